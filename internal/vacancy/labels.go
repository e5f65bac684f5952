package vacancy

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory reports a category label outside the known set.
var ErrUnknownCategory = errors.New("unknown category")

// ErrUnknownExperience reports an experience label outside the known set.
var ErrUnknownExperience = errors.New("unknown experience")

// Categories maps the caller-facing category labels to the site's query codes.
var Categories = map[string]string{
	"Android":         "android",
	"C++":             "c++",
	"Data Science":    "data-science",
	"Java":            "java",
	"iOS/MacOS":       "ios",
	"DevOps":          "devops",
	"Front End":       "front-end",
	"HR":              "hr",
	"Python":          "python",
	"QA":              "qa",
	"Project Manager": "pm",
	"Product Manager": "product-manager",
	"Design":          "design",
}

// ExperienceLevels maps the experience filter labels to query codes.
var ExperienceLevels = map[string]string{
	"Без досвіду": "0-1",
	"1–3 роки":    "1-3",
	"3–5 років":   "3-5",
	"5+ років":    "5plus",
}

// CategoryCode resolves a category label to its query code.
func CategoryCode(label string) (string, error) {
	code, ok := Categories[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
	}
	return code, nil
}

// ExperienceCode resolves an experience label to its query code. An empty
// label means no filter and resolves to an empty code.
func ExperienceCode(label string) (string, error) {
	if label == "" {
		return "", nil
	}
	code, ok := ExperienceLevels[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownExperience, label)
	}
	return code, nil
}
