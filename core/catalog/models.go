package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

// Section selects the collection an item is stored in.
type Section string

const (
	SectionResource Section = "resource"
	SectionLecture  Section = "lecture"
)

var AllSections = []Section{SectionResource, SectionLecture}

func (s Section) Valid() bool { return s == SectionResource || s == SectionLecture }

func (s Section) Collection() string {
	if s == SectionLecture {
		return docstore.Lectures
	}
	return docstore.Resources
}

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var AllKinds = []Kind{KindText, KindImage, KindVideo}

func (k Kind) Valid() bool { return k == KindText || k == KindImage || k == KindVideo }

type VideoSource string

const (
	SourceYoutube      VideoSource = "youtube"
	SourceKhanAcademy  VideoSource = "khan_academy"
	SourceVimeo        VideoSource = "vimeo"
	SourceCustom       VideoSource = "custom"
	youtubeEmbedURL                = "https://www.youtube.com/embed/"
	khanAcademyEmbedURL            = "https://www.khanacademy.org/embed_video?v="
	vimeoEmbedURL                  = "https://player.vimeo.com/video/"
)

func (vs VideoSource) Valid() bool {
	switch vs {
	case SourceYoutube, SourceKhanAcademy, SourceVimeo, SourceCustom:
		return true
	}
	return false
}

type (
	// Body is the content of an item: one of TextBody, ImageBody or VideoBody.
	Body interface {
		Kind() Kind
	}

	TextBody struct {
		Content string `json:"content"`
	}

	ImageBody struct {
		ImageURL string `json:"imageUrl"`
	}

	VideoBody struct {
		Source  VideoSource `json:"source"`
		VideoID string      `json:"videoId,omitempty"`
		URL     string      `json:"url,omitempty"`
	}
)

func (TextBody) Kind() Kind  { return KindText }
func (ImageBody) Kind() Kind { return KindImage }
func (VideoBody) Kind() Kind { return KindVideo }

// EmbedURL returns the player URL of the video.
func (vb VideoBody) EmbedURL() string {
	switch vb.Source {
	case SourceYoutube:
		return youtubeEmbedURL + vb.VideoID
	case SourceKhanAcademy:
		return khanAcademyEmbedURL + vb.VideoID
	case SourceVimeo:
		return vimeoEmbedURL + vb.VideoID
	default:
		return vb.URL
	}
}

func (vb VideoBody) MarshalJSON() ([]byte, error) {
	type video VideoBody
	return json.Marshal(struct {
		video
		EmbedURL string `json:"embedUrl"`
	}{video(vb), vb.EmbedURL()})
}

type Item struct {
	ID          string
	Section     Section
	Title       string
	Description string
	Category    string
	Board       string
	ClassLevel  int // 0: unset
	Subject     string
	Topic       string
	Transcript  string
	Body        Body
	Rating      rating.Summary
	CreatedAt   time.Time // UTC
	UpdatedAt   time.Time // UTC
}

func (it Item) Kind() Kind {
	if it.Body == nil {
		return ""
	}
	return it.Body.Kind()
}

func (it Item) Position() docstore.Cursor {
	return docstore.Cursor{CreatedAt: it.CreatedAt, ID: it.ID}
}

func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string         `json:"id"`
		Section     Section        `json:"section"`
		Kind        Kind           `json:"kind"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Board       string         `json:"board,omitempty"`
		ClassLevel  int            `json:"classLevel,omitempty"`
		Subject     string         `json:"subject,omitempty"`
		Topic       string         `json:"topic,omitempty"`
		Transcript  string         `json:"transcript,omitempty"`
		Body        Body           `json:"body"`
		Rating      rating.Summary `json:"rating"`
		CreatedAt   time.Time      `json:"createdAt"`
		UpdatedAt   time.Time      `json:"updatedAt"`
	}{
		it.ID, it.Section, it.Kind(), it.Title, it.Description, it.Category, it.Board, it.ClassLevel,
		it.Subject, it.Topic, it.Transcript, it.Body, it.Rating, it.CreatedAt, it.UpdatedAt,
	})
}

// NewItem is the admin input for creating or replacing an item.
// The body variant is selected by Kind; only the fields of that variant are kept.
type NewItem struct {
	Section     Section     `json:"section" validate:"required,section"`
	Title       string      `json:"title" validate:"required,notblank,max=200"`
	Description string      `json:"description" validate:"max=4000"`
	Category    string      `json:"category" validate:"required,notblank,max=100"`
	Board       string      `json:"board" validate:"max=100"`
	ClassLevel  int         `json:"classLevel" validate:"min=0,max=12"`
	Subject     string      `json:"subject" validate:"max=100"`
	Topic       string      `json:"topic" validate:"max=200"`
	Transcript  string      `json:"transcript"`
	Kind        Kind        `json:"kind" validate:"required,kind"`
	Content     string      `json:"content"`
	ImageURL    string      `json:"imageUrl" validate:"omitempty,url"`
	VideoSource VideoSource `json:"videoSource" validate:"omitempty,videosource"`
	VideoID     string      `json:"videoId" validate:"omitempty,max=100"`
	VideoURL    string      `json:"videoUrl" validate:"omitempty,url"`
}

func (ni *NewItem) Clean() {
	ni.Section = Section(core.CleanString(string(ni.Section), true /* lower */))
	ni.Title = core.CleanString(ni.Title)
	ni.Description = strings.TrimSpace(ni.Description)
	ni.Category = core.CleanString(ni.Category)
	ni.Board = core.CleanString(ni.Board)
	ni.Subject = core.CleanString(ni.Subject)
	ni.Topic = core.CleanString(ni.Topic)
	ni.Transcript = strings.TrimSpace(ni.Transcript)
	ni.Kind = Kind(core.CleanString(string(ni.Kind), true /* lower */))
	ni.Content = strings.TrimSpace(ni.Content)
	ni.ImageURL = core.CleanString(ni.ImageURL)
	ni.VideoSource = VideoSource(core.CleanString(string(ni.VideoSource), true /* lower */))
	ni.VideoID = core.CleanString(ni.VideoID)
	ni.VideoURL = core.CleanString(ni.VideoURL)
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Clean()
	return validate.Struct(ni)
}

// Body builds the tagged body of a validated NewItem.
func (ni NewItem) Body() Body {
	switch ni.Kind {
	case KindImage:
		return ImageBody{ImageURL: ni.ImageURL}
	case KindVideo:
		vb := VideoBody{Source: ni.VideoSource}
		if ni.VideoSource == SourceCustom {
			vb.URL = ni.VideoURL
		} else {
			vb.VideoID = ni.VideoID
		}
		return vb
	default:
		return TextBody{Content: ni.Content}
	}
}

// Filter is a logical AND of the non-zero fields.
type Filter struct {
	Section    Section `query:"section"`
	Category   string  `query:"category"`
	ClassLevel int     `query:"classLevel"`
	Subject    string  `query:"subject"`
	Board      string  `query:"board"`
	Topic      string  `query:"topic"`
	Search     string  `query:"search"`
}

func (f *Filter) Clean() {
	f.Section = Section(core.CleanString(string(f.Section), true /* lower */))
	f.Category = core.CleanString(f.Category)
	f.Subject = core.CleanString(f.Subject)
	f.Board = core.CleanString(f.Board)
	f.Topic = core.CleanString(f.Topic)
	f.Search = core.CleanString(f.Search)
}

func (f *Filter) Validate() error {
	f.Clean()
	if f.Section != "" && !f.Section.Valid() {
		return core.NewValidationError(errors.New("invalid section"), core.FieldError{Field: "section", Error: "invalid section"})
	}
	if f.ClassLevel < 0 || f.ClassLevel > 12 {
		return core.NewValidationError(errors.New("invalid class level"), core.FieldError{Field: "classLevel", Error: "class level must be between 1 and 12"})
	}
	return nil
}

func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

func (f Filter) Match(it Item) bool {
	if f.Section != "" && it.Section != f.Section {
		return false
	}
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.Board != "" && it.Board != f.Board {
		return false
	}
	if f.ClassLevel != 0 && it.ClassLevel != f.ClassLevel {
		return false
	}
	if f.Subject != "" && !strings.EqualFold(it.Subject, f.Subject) {
		return false
	}
	if f.Topic != "" && !strings.EqualFold(it.Topic, f.Topic) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(it.Title), term) && !strings.Contains(strings.ToLower(it.Description), term) {
			return false
		}
	}
	return true
}
