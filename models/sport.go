package models

// Sport names are the keys the score validators dispatch on.
const (
	SportCricket    = "cricket"
	SportBasketball = "basketball"
	SportVolleyball = "volleyball"
	SportTennis     = "tennis"
	SportBadminton  = "badminton"
	SportFootball   = "football"
)

type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
