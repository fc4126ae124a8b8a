package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategorySaaS                   Category = "saas"
	CategoryYoutuberGamer          Category = "youtuber_gamer"
	CategoryYoutuberContentCreator Category = "youtuber_content_creator"
	CategoryYoutuberEducational    Category = "youtuber_educational"
	CategoryInfluencerInstagram    Category = "influencer_instagram"
	CategoryInfluencerFacebook     Category = "influencer_facebook"
	CategoryInfluencerTwitter      Category = "influencer_twitter"
	CategoryIndianStartup          Category = "indian_startup"
	CategoryFilmEntertainment      Category = "film_entertainment"
	CategoryBusinessIndia          Category = "business_india"
	CategoryEcommerce              Category = "ecommerce"
	CategoryConsulting             Category = "consulting"
	CategoryAgency                 Category = "agency"
	CategoryOther                  Category = "other"
)

var categories = map[Category]string{
	CategorySaaS:                   "SaaS",
	CategoryYoutuberGamer:          "YouTuber - Gamer",
	CategoryYoutuberContentCreator: "YouTuber - Content Creator",
	CategoryYoutuberEducational:    "YouTuber - Educational",
	CategoryInfluencerInstagram:    "Influencer - Instagram",
	CategoryInfluencerFacebook:     "Influencer - Facebook",
	CategoryInfluencerTwitter:      "Influencer - Twitter/X",
	CategoryIndianStartup:          "Indian Startup",
	CategoryFilmEntertainment:      "Film/Entertainment",
	CategoryBusinessIndia:          "Business in India",
	CategoryEcommerce:              "E-commerce",
	CategoryConsulting:             "Consulting",
	CategoryAgency:                 "Agency",
	CategoryOther:                  "Other",
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

func (c Category) Label() string {
	return categories[c]
}

// ParseCategory falls back to CategoryOther for empty input.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, true
	}
	c := Category(s)
	return c, c.Valid()
}

const (
	AnonymousCompanyName = "Anonymous Company"
	AnonymousFounderName = "Anonymous"
)

// Company is a leaderboard entry.
type Company struct {
	ID             int64
	Name           string
	Website        string
	FounderName    string
	LogoURL        string
	FounderPhoto   string
	Description    string
	TwitterHandle  string
	Tagline        string
	FoundingDate   *time.Time
	Country        string
	FollowerCount  int
	EstimatedMRR   *float64
	MonthlyRevenue float64
	MoMGrowth      float64
	Category       Category
	IsVerified     bool
	LastVerifiedAt *time.Time

	ShowInLeaderboard bool
	IsAnonymous       bool

	OwnerID       *int64
	OwnerUsername string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOwnedBy matches on the owner id, or on founder name for rows created
// before ownership was tracked.
func (c *Company) IsOwnedBy(userID int64, username string) bool {
	if c.OwnerID != nil {
		return *c.OwnerID == userID
	}
	return username != "" && strings.EqualFold(strings.TrimSpace(c.FounderName), username)
}

// PublicView returns a copy safe to show to anyone: anonymous companies lose
// their name and founder.
func (c Company) PublicView() Company {
	if c.IsAnonymous {
		c.Name = AnonymousCompanyName
		c.FounderName = AnonymousFounderName
		c.OwnerUsername = ""
		c.FounderPhoto = ""
		c.TwitterHandle = ""
	}
	return c
}
