package server

import (
	"errors"
	"html/template"
	"strings"
	"unicode"

	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
)

var templateFuncs = template.FuncMap{
	"addWorkerURL": func(officeID string) string {
		form, _ := WorkerForm{}.OpenAdd()
		return officePath(officeID, form.Query())
	},
	"editWorkerURL": func(officeID string, w apiclient.Worker) string {
		form, _ := WorkerForm{}.OpenEdit(w)
		return officePath(officeID, form.Query())
	},
	"confirmDeleteURL": func(officeID string) string {
		return officePath(officeID, map[string][]string{"confirm": {"delete"}})
	},
	"confirmRemoveURL": func(officeID, workerID string) string {
		return officePath(officeID, map[string][]string{"confirm_worker": {workerID}})
	},
	"dict":           dict,
	"occupancyLevel": occupancyLevel,
	"initial":        initial,
	"searchText": func(w apiclient.Worker) string {
		return strings.ToLower(w.Name + " " + w.Position + " " + w.Email)
	},
}

// occupancyLevel buckets a percentage for the progress bar color.
func occupancyLevel(pct int) string {
	switch {
	case pct >= 90:
		return "full"
	case pct >= 70:
		return "busy"
	default:
		return "ok"
	}
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
