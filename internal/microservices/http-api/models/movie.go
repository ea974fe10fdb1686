package models

import "time"

// EarliestReleaseYear is the year of the first known motion picture.
const EarliestReleaseYear = 1888

// MaxURLLength matches the poster and trailer column widths.
const MaxURLLength = 500

type Movie struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	ReleaseYear int       `json:"release_year" gorm:"not null;check:release_year >= 1888"`
	PosterURL   string    `json:"poster_url" gorm:"size:500"`
	TrailerURL  *string   `json:"trailer_url,omitempty" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// associations; deleting a movie removes its ratings, comments and genre links
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:movie_genre;constraint:OnDelete:CASCADE;"`
	Ratings  []Rating  `json:"-" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE;"`
}

func (Movie) TableName() string {
	return "movies"
}

// AverageRating is the mean of the preloaded ratings, nil when there are none.
func (m *Movie) AverageRating() *float64 {
	return AverageRating(m.Ratings)
}

// GenreNames lists the linked genre names in stored order.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}
