package domain

// MediaPlayer is the opaque playback capability the player screen drives.
// Duration returns 0 while media metadata is not loaded yet.
type MediaPlayer interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	CurrentTime() float64
	Duration() float64
}
