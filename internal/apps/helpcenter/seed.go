package helpcenter

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedArticle struct {
	category string
	article  Article
}

type seedFAQ struct {
	category string
	faq      FAQ
}

var seedCategories = []Category{
	{Name: "Getting Started", Slug: "getting-started", Icon: "Rocket", SortOrder: 1, IsActive: true,
		Description: "Learn the basics of using DzeNhare SQB"},
	{Name: "Projects", Slug: "projects", Icon: "Construction", SortOrder: 2, IsActive: true,
		Description: "Creating and running construction projects"},
	{Name: "Payments & Billing", Slug: "payments-billing", Icon: "CreditCard", SortOrder: 3, IsActive: true,
		Description: "Escrow, milestone payments, plans and invoices"},
	{Name: "Contractors & Suppliers", Slug: "contractors-suppliers", Icon: "Users", SortOrder: 4, IsActive: true,
		Description: "Bids, material orders and ratings"},
	{Name: "Account & Settings", Slug: "account-settings", Icon: "Settings", SortOrder: 5, IsActive: true,
		Description: "Your profile and preferences"},
	{Name: "Troubleshooting", Slug: "troubleshooting", Icon: "HelpCircle", SortOrder: 6, IsActive: true,
		Description: "Common problems and how to fix them"},
}

var seedArticles = []seedArticle{
	{"getting-started", Article{
		Title: "Welcome to DzeNhare SQB", Slug: "welcome-to-dzenhare-sqb", SortOrder: 1, IsFeatured: true,
		Excerpt: "What the platform does and who it is for",
		Content: "DzeNhare SQB connects builders with contractors and suppliers.\n\n" +
			"Builders plan projects, split the budget into milestones and release payments from escrow as work is verified. " +
			"Contractors bid on open projects and track work-in-progress billing. Suppliers publish products and fulfil material orders.\n\n" +
			"Projects run on one of three engagement tiers: DIY, DIT (guided) and DIFY (fully managed).",
	}},
	{"getting-started", Article{
		Title: "Creating Your First Project", Slug: "creating-your-first-project", SortOrder: 2, IsFeatured: true,
		Excerpt: "From an idea to a project with a budget",
		Content: "Open the Builder dashboard and choose New Project. Give it a title, a location and a budget, " +
			"then pick an engagement tier. New projects start in Planning.\n\n" +
			"Next, add milestones so contractors can see how payments will be released.",
	}},
	{"projects", Article{
		Title: "Managing Milestones", Slug: "managing-milestones", SortOrder: 1,
		Excerpt: "Pending, verified and paid milestones",
		Content: "Every milestone has an amount and a due date. A milestone starts Pending, becomes Verified once the work " +
			"has been checked, and is marked Paid only by recording a payment. The amount of a milestone cannot be changed " +
			"after it is created; delete it and create a new one instead. Paid milestones cannot be deleted.",
	}},
	{"payments-billing", Article{
		Title: "Understanding Escrow", Slug: "understanding-escrow", SortOrder: 1, IsFeatured: true,
		Excerpt: "Budget, paid to date, remaining and the next payment",
		Content: "The escrow summary shows, per project, the budget, the total of paid milestones and what remains. " +
			"The next payment is the pending milestone with the earliest due date.\n\n" +
			"Each milestone can be paid once. A second payment attempt is rejected.",
	}},
	{"payments-billing", Article{
		Title: "Plans and Invoices", Slug: "plans-and-invoices", SortOrder: 2,
		Excerpt: "Free, Professional and Enterprise plans",
		Content: "Every account starts on the Free plan. Upgrading creates an invoice for the new plan. " +
			"Cancelling keeps the plan active until the end of the current period; you can reactivate before then.",
	}},
	{"contractors-suppliers", Article{
		Title: "Reviewing Bids", Slug: "reviewing-bids", SortOrder: 1,
		Excerpt: "Accepting and rejecting contractor bids",
		Content: "Submitted bids appear on the project page, cheapest first. A bid total is always direct costs plus " +
			"overhead plus net margin. Accept or reject a bid once; after that it is locked.",
	}},
	{"account-settings", Article{
		Title: "Updating Your Profile", Slug: "updating-your-profile", SortOrder: 1,
		Excerpt: "Names, phone number and address",
		Content: "Your name and role come from your sign-in account and are refreshed each time you use the app. " +
			"You can update your name, phone number and address from Settings.",
	}},
	{"troubleshooting", Article{
		Title: "Common Issues and Solutions", Slug: "common-issues-and-solutions", SortOrder: 1,
		Excerpt: "Sign-in problems and missing dashboards",
		Content: "If you are signed out unexpectedly, sign in again: your session token may have expired.\n\n" +
			"If a dashboard is missing, check the role on your account. Builders, contractors and suppliers each see their own dashboard.",
	}},
}

var seedFAQs = []seedFAQ{
	{"getting-started", FAQ{Question: "Is DzeNhare SQB free to use?", SortOrder: 1,
		Answer: "Yes. The Free plan includes one project. Paid plans add more projects, storage and support."}},
	{"payments-billing", FAQ{Question: "Can a milestone be paid twice?", SortOrder: 1,
		Answer: "No. Once a milestone is paid any further payment for it is rejected."}},
	{"payments-billing", FAQ{Question: "What happens when I cancel my subscription?", SortOrder: 2,
		Answer: "Your plan stays active until the end of the current billing period and then ends."}},
	{"contractors-suppliers", FAQ{Question: "How are contractor ratings calculated?", SortOrder: 1,
		Answer: "A contractor's rating is the average of the 1 to 5 star ratings builders gave on their projects."}},
	{"account-settings", FAQ{Question: "How do I change my role?", SortOrder: 1,
		Answer: "Your role is managed on your sign-in account. Contact support to change it."}},
}

// Seed inserts the default help center content. Rows are keyed by slug or
// question and never overwritten.
func Seed(db *gorm.DB) error {
	ids := map[string]*Category{}
	for _, c := range seedCategories {
		category := c
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
		if err := db.Where("slug = ?", c.Slug).First(&category).Error; err != nil {
			return fmt.Errorf("load category %s: %w", c.Slug, err)
		}
		ids[c.Slug] = &category
	}

	for _, sa := range seedArticles {
		article := sa.article
		article.CategoryID = ids[sa.category].ID
		article.IsActive = true
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&article).Error; err != nil {
			return fmt.Errorf("seed article %s: %w", article.Slug, err)
		}
	}

	seeded := 0
	for _, sf := range seedFAQs {
		var count int64
		if err := db.Model(&FAQ{}).Where("question = ?", sf.faq.Question).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		faq := sf.faq
		faq.CategoryID = &ids[sf.category].ID
		faq.IsActive = true
		if err := db.Create(&faq).Error; err != nil {
			return fmt.Errorf("seed faq: %w", err)
		}
		seeded++
	}

	slog.Info("help center seeded", "categories", len(seedCategories), "articles", len(seedArticles), "new_faqs", seeded)
	return nil
}
