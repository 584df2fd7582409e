package models

// Person is a cast or crew member with the titles they appear in.
type Person struct {
	ID        string
	Name      string
	BirthYear *int
	DeathYear *int
	Roles     []Role
}

// Role links a person to a title.
type Role struct {
	MovieName  string
	MovieID    string
	Category   string
	Characters []string
	IMDBRating *float64
}
