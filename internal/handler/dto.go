package handler

import (
	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
)

// LessonDTO is the JSON representation of a lesson and its status.
type LessonDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	VideoURL    string `json:"videoUrl"`
	Order       int    `json:"order"`
	Status      string `json:"status"`
}

func toLessonDTO(l domain.Lesson, status domain.LessonStatus) LessonDTO {
	return LessonDTO{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Duration:    l.Duration,
		Thumbnail:   l.Thumbnail,
		VideoURL:    l.VideoURL,
		Order:       l.Order,
		Status:      string(status),
	}
}

func toLessonDTOs(cards []service.LessonCard) []LessonDTO {
	dtos := make([]LessonDTO, len(cards))
	for i, c := range cards {
		dtos[i] = toLessonDTO(c.Lesson, c.Status)
	}
	return dtos
}

// MetricsDTO is the JSON representation of course completion.
type MetricsDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func toMetricsDTO(m domain.Metrics) MetricsDTO {
	return MetricsDTO{Completed: m.Completed, Total: m.Total, Percent: m.Percent}
}

// StateDTO is the JSON representation of a viewer session.
type StateDTO struct {
	View             string                           `json:"view"`
	SelectedLessonID *string                          `json:"selectedLessonId"`
	Lesson           *LessonDTO                       `json:"lesson"`
	Metrics          MetricsDTO                       `json:"metrics"`
	Lessons          []LessonDTO                      `json:"lessons"`
	Progress         map[string]domain.ProgressRecord `json:"progress"`
	Playing          bool                             `json:"playing"`
	Percent          float64                          `json:"percent"`
}

func toStateDTO(snap service.Snapshot) StateDTO {
	dto := StateDTO{
		View:     string(snap.State.CurrentView),
		Metrics:  toMetricsDTO(snap.Metrics),
		Lessons:  toLessonDTOs(snap.Lessons),
		Progress: snap.Records,
		Playing:  snap.Playing,
		Percent:  snap.Percent,
	}
	if snap.State.HasSelection() {
		id := snap.State.SelectedLessonID
		dto.SelectedLessonID = &id
	}
	if snap.Lesson != nil {
		l := toLessonDTO(*snap.Lesson, snap.Progress.Status)
		dto.Lesson = &l
	}
	if dto.Progress == nil {
		dto.Progress = map[string]domain.ProgressRecord{}
	}
	return dto
}
