package commands

import (
	"fmt"
	"strings"

	"tableflip.dev/notiq/pkg/app"
	"tableflip.dev/notiq/pkg/model"
)

// resolveID expands arg to the one id it is equal to or a prefix of. Unknown
// values are returned as given so deletes stay idempotent.
func resolveID(ids []string, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	var matches []string
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return arg, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d records, use more of the id", arg, len(matches))
	}
}

func taskIDs(s app.Snapshot) []string {
	ids := make([]string, 0, len(s.Tasks)+len(s.Completed))
	for _, list := range [][]*model.Task{s.Tasks, s.Completed} {
		for _, t := range list {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func eventIDs(s app.Snapshot) []string {
	ids := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		ids = append(ids, e.ID)
	}
	return ids
}

func placeIDs(s app.Snapshot) []string {
	ids := make([]string, 0, len(s.Places))
	for _, p := range s.Places {
		ids = append(ids, p.ID)
	}
	return ids
}
