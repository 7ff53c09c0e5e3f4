package domain

// Lesson is one instructional video in the course catalog. Lessons are
// defined at startup and never mutated during a session.
type Lesson struct {
	ID          string `yaml:"id" validate:"required"`
	Title       string `yaml:"title" validate:"required"`
	Description string `yaml:"description" validate:"required"`
	Duration    string `yaml:"duration" validate:"required"` // display label, e.g. "3:45"
	Thumbnail   string `yaml:"thumbnail" validate:"required"`
	VideoURL    string `yaml:"video_url" validate:"required"`
	Order       int    `yaml:"order" validate:"gte=1"`
}
