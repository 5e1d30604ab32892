package helpcenter

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleBySlugCountsView(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewHelpCenterService(db)
	categoryID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "help_center_articles" SET "views_count"=views_count \+ 1 WHERE \(?slug = \$1 AND is_active = \$2`).
		WithArgs("understanding-escrow", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "help_center_articles" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "title", "slug", "content", "views_count", "is_active", "created_at", "updated_at"}).
			AddRow(uuid.New().String(), categoryID.String(), "Understanding Escrow", "understanding-escrow", "...", 8, true, now, now))
	mock.ExpectQuery(`SELECT \* FROM "help_center_categories" WHERE "help_center_categories"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(categoryID.String(), "Payments & Billing", "payments-billing"))

	article, err := svc.ArticleBySlug(context.Background(), "understanding-escrow")
	require.NoError(t, err)
	assert.Equal(t, 8, article.ViewsCount)
	require.NotNil(t, article.Category)
	assert.Equal(t, "payments-billing", article.Category.Slug)
}

func TestArticleBySlugMissingOrInactive(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewHelpCenterService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "help_center_articles"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.ArticleBySlug(context.Background(), "hidden")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFAQByIDMissing(t *testing.T) {
	db, mock := testutil.MockDB(t)
	svc := NewHelpCenterService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "faqs" SET "views_count"=views_count \+ 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.FAQByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateArticleValidatesSlug(t *testing.T) {
	db, _ := testutil.MockDB(t)
	svc := NewHelpCenterService(db)

	for _, slug := range []string{"", "Has Caps", "trailing-", "under_score"} {
		_, err := svc.CreateArticle(context.Background(), CreateArticleRequest{
			CategorySlug: "projects", Title: "T", Content: "C", Slug: slug,
		})
		assert.Equal(t, "slug", apperr.Field(err), slug)
	}
}

func TestSlugPattern(t *testing.T) {
	assert.True(t, slugPattern.MatchString("understanding-escrow"))
	assert.True(t, slugPattern.MatchString("faq2"))
	assert.False(t, slugPattern.MatchString("-leading"))
	assert.False(t, slugPattern.MatchString("double--hyphen"))
}
