package catalog

import (
	"fmt"
	"strings"
)

// Boards are the education boards content can be organized under.
var Boards = []string{
	"CBSE",
	"ICSE",
	"State Board (Maharashtra)",
	"State Board (Karnataka)",
	"State Board (Tamil Nadu)",
	"International Baccalaureate",
}

var (
	primarySubjects   = []string{"English", "Mathematics", "Environmental Studies"}
	upperPrimary      = []string{"English", "Mathematics", "Environmental Studies", "Science"}
	secondarySubjects = []string{"English", "Mathematics", "Science", "Social Studies"}
	seniorSubjects    = []string{"English", "Mathematics", "Physics", "Chemistry", "Biology", "Computer Science"}
)

type ClassSubjects struct {
	ClassLevel int      `json:"classLevel"`
	Subjects   []string `json:"subjects"`
}

type Curriculum struct {
	Boards  []string        `json:"boards"`
	Classes []ClassSubjects `json:"classes"`
}

// SubjectsForClass returns the subjects taught in class level n (1-12), nil otherwise.
func SubjectsForClass(n int) []string {
	var subjects []string
	switch {
	case n >= 1 && n <= 3:
		subjects = primarySubjects
	case n >= 4 && n <= 5:
		subjects = upperPrimary
	case n >= 6 && n <= 10:
		subjects = secondarySubjects
	case n >= 11 && n <= 12:
		subjects = seniorSubjects
	default:
		return nil
	}
	return append([]string(nil), subjects...)
}

func GetCurriculum() Curriculum {
	c := Curriculum{Boards: append([]string(nil), Boards...)}
	for n := 1; n <= 12; n++ {
		c.Classes = append(c.Classes, ClassSubjects{ClassLevel: n, Subjects: SubjectsForClass(n)})
	}
	return c
}

// SampleItems returns the starter catalog: one introductory lecture per class and subject,
// subject reading resources and a few trending videos.
func SampleItems() []NewItem {
	items := make([]NewItem, 0, 64)
	for n := 1; n <= 12; n++ {
		for _, subject := range SubjectsForClass(n) {
			items = append(items, NewItem{
				Section:     SectionLecture,
				Title:       fmt.Sprintf("%s for Class %d", subject, n),
				Description: fmt.Sprintf("An introduction to %s concepts for Class %d students.", subject, n),
				Category:    subject,
				Board:       "CBSE",
				ClassLevel:  n,
				Subject:     subject,
				Topic:       "Introduction",
				Transcript:  fmt.Sprintf("This is a sample transcript for the %s lecture for Class %d.", subject, n),
				Kind:        KindVideo,
				VideoSource: SourceYoutube,
				VideoID:     "dQw4w9WgXcQ",
			})
		}
	}

	resources := []struct{ category, title, description string }{
		{"Math", "Introduction to Calculus", "Learn the basics of calculus, including limits, derivatives, and integrals."},
		{"Math", "Linear Algebra Fundamentals", "Explore vectors, matrices, and linear transformations."},
		{"Math", "Statistics and Probability", "Understand data analysis, probability distributions, and hypothesis testing."},
		{"Science", "Quantum Mechanics", "Dive into the strange world of quantum physics and its applications."},
		{"Science", "Molecular Biology", "Explore the structure and function of DNA, RNA, and proteins."},
		{"Science", "Environmental Science", "Learn about ecosystems, climate change, and sustainability."},
		{"Literature", "Shakespeare's Plays", "Analyze the themes and characters in Shakespeare's most famous works."},
		{"Literature", "Modern Poetry", "Explore the styles and themes of 20th and 21st century poets."},
		{"Literature", "World Literature", "Discover great works from various cultures and time periods."},
	}
	for _, r := range resources {
		items = append(items, NewItem{
			Section:     SectionResource,
			Title:       r.title,
			Description: r.description,
			Category:    r.category,
			Subject:     r.category,
			Kind:        KindText,
			Content:     r.description,
		})
	}

	trending := []struct{ category, title, description, videoID string }{
		{"Science", "Understanding Quantum Entanglement", "Explore the fascinating world of quantum physics and learn about the phenomenon of entanglement.", "JFozGfxmi8A"},
		{"History", "The French Revolution: Causes and Consequences", "Delve into the historical events that led to the French Revolution and its impact on modern society.", "5fJl_ZX91l0"},
		{"Math", "Advanced Calculus: Taylor Series Explained", "Master the concept of Taylor series and its applications in advanced mathematics.", "3d6DsjIBzJ4"},
		{"Literature", "Shakespeare's Macbeth: Character Analysis", "An in-depth look at the main characters in Shakespeare's tragedy Macbeth.", "qfnUq2_0FOY"},
		{"Science", "Climate Change: The Science and Global Impact", "Understand the scientific basis of climate change and its effects on our planet.", "gUdtcx-6OBE"},
	}
	for _, v := range trending {
		items = append(items, NewItem{
			Section:     SectionResource,
			Title:       v.title,
			Description: v.description,
			Category:    v.category,
			Subject:     v.category,
			Topic:       "Trending",
			Kind:        KindVideo,
			VideoSource: SourceYoutube,
			VideoID:     v.videoID,
		})
	}
	return items
}

// SampleID returns a readable id for a sample item, e.g. "lecture-7-social-studies".
func SampleID(ni NewItem) string {
	slug := strings.NewReplacer(" ", "-", ":", "", "'", "", "(", "", ")", "").Replace(strings.ToLower(ni.Title))
	if ni.Section == SectionLecture {
		return fmt.Sprintf("lecture-%d-%s", ni.ClassLevel, strings.ToLower(strings.ReplaceAll(ni.Subject, " ", "-")))
	}
	return "resource-" + slug
}
