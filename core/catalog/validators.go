package catalog

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
)

var (
	sectionTag  = "section"
	sectionText = "must be one of: resource, lecture"

	kindTag  = "kind"
	kindText = "must be one of: text, image, video"

	videoSourceTag  = "videosource"
	videoSourceText = "must be one of: youtube, khan_academy, vimeo, custom"

	bodyRequiredTag  = "body_required"
	bodyRequiredText = "this field is required for this kind of content"
)

// InitValidators registers the catalog validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sectionTag, func(fl validator.FieldLevel) bool {
		return Section(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)

	_ = validate.RegisterValidation(kindTag, func(fl validator.FieldLevel) bool {
		return Kind(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)

	_ = validate.RegisterValidation(videoSourceTag, func(fl validator.FieldLevel) bool {
		return VideoSource(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, videoSourceTag, videoSourceText)

	validate.RegisterStructValidation(itemStructValidation, NewItem{})
	core.RegisterCustomTranslation(validate, translator, bodyRequiredTag, bodyRequiredText)
}

// itemStructValidation checks that the fields of the body variant selected by Kind are present:
// text needs content, image needs imageUrl, video needs videoSource and then
// videoUrl for custom sources or videoId for the others.
func itemStructValidation(sl validator.StructLevel) {
	ni, ok := sl.Current().Interface().(NewItem)
	if !ok {
		return
	}
	switch ni.Kind {
	case KindText:
		if ni.Content == "" {
			sl.ReportError(ni.Content, "content", "Content", bodyRequiredTag, "")
		}
	case KindImage:
		if ni.ImageURL == "" {
			sl.ReportError(ni.ImageURL, "imageUrl", "ImageURL", bodyRequiredTag, "")
		}
	case KindVideo:
		switch {
		case ni.VideoSource == "":
			sl.ReportError(ni.VideoSource, "videoSource", "VideoSource", bodyRequiredTag, "")
		case ni.VideoSource == SourceCustom && ni.VideoURL == "":
			sl.ReportError(ni.VideoURL, "videoUrl", "VideoURL", bodyRequiredTag, "")
		case ni.VideoSource != SourceCustom && ni.VideoID == "":
			sl.ReportError(ni.VideoID, "videoId", "VideoID", bodyRequiredTag, "")
		}
	}
}
