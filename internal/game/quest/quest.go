// Package quest tracks the character's quests and their objectives.
package quest

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a quest.
type Status string

const (
	InProgress Status = "En cours"
	Completed  Status = "Terminée"
	Failed     Status = "Échouée"
)

// ParseStatus validates s as a quest Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case InProgress, Completed, Failed:
		return st, nil
	}
	return "", fmt.Errorf("unknown quest status %q", s)
}

// ErrNotFound is returned when an update names an unknown quest.
var ErrNotFound = errors.New("quest not found")

// ErrDuplicate is returned when starting a quest whose id is already in the log.
var ErrDuplicate = errors.New("quest already started")

// Objective is one step of a quest.
type Objective struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Quest is one entry of the quest log.
//
// Invariant: a quest whose objectives are all complete is never InProgress.
type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	Objectives  []Objective `json:"objectives"`
}

// New creates an in-progress quest with one objective per description.
//
// Postcondition: objective i has ID "<id>-obj-<i>" and is incomplete.
func New(id, title, description string, objectives []string) Quest {
	q := Quest{ID: id, Title: title, Description: description, Status: InProgress}
	for _, desc := range objectives {
		q.appendObjective(desc)
	}
	return q
}

func (q *Quest) appendObjective(desc string) {
	q.Objectives = append(q.Objectives, Objective{
		ID:          fmt.Sprintf("%s-obj-%d", q.ID, len(q.Objectives)),
		Description: desc,
	})
}

func (q *Quest) autoComplete() {
	if q.Status != InProgress {
		return
	}
	for _, o := range q.Objectives {
		if !o.Completed {
			return
		}
	}
	q.Status = Completed
}

// Update is a partial change to one quest. Zero-valued fields are left alone.
type Update struct {
	// CompleteObjective marks every objective with this exact description complete.
	CompleteObjective string
	// NewObjective appends an incomplete objective.
	NewObjective string
	// NewDescription replaces the description.
	NewDescription string
	// Status sets the status directly.
	Status Status
}

// Log is the ordered quest list of a character.
type Log []Quest

// Find returns the quest with the given id.
func (l Log) Find(id string) (Quest, bool) {
	for _, q := range l {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

// Start returns the log with q appended.
//
// Postcondition: Returns ErrDuplicate when q.ID is already present; the log is unchanged.
func (l Log) Start(q Quest) (Log, error) {
	if _, ok := l.Find(q.ID); ok {
		return l, fmt.Errorf("%w: %q", ErrDuplicate, q.ID)
	}
	out := make(Log, len(l), len(l)+1)
	copy(out, l)
	return append(out, q), nil
}

// Apply returns the log with u applied to quest id, followed by the
// auto-completion check.
//
// Postcondition: Returns ErrNotFound for an unknown id; otherwise the updated quest
// satisfies the Quest invariant.
func (l Log) Apply(id string, u Update) (Log, Quest, error) {
	out := make(Log, len(l))
	copy(out, l)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		q := out[i]
		q.Objectives = append([]Objective(nil), q.Objectives...)
		if u.CompleteObjective != "" {
			for j := range q.Objectives {
				if q.Objectives[j].Description == u.CompleteObjective {
					q.Objectives[j].Completed = true
				}
			}
		}
		if u.NewObjective != "" {
			q.appendObjective(u.NewObjective)
		}
		if u.NewDescription != "" {
			q.Description = u.NewDescription
		}
		if u.Status != "" {
			q.Status = u.Status
		}
		q.autoComplete()
		out[i] = q
		return out, q, nil
	}
	return l, Quest{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}
