//
// per-activation picker state, kept in memory for the
// lifetime of one grading view and dropped on navigation.
//
package session

import (
	"sync"
	"time"

	"github.com/nsip/otf-gradesync/internal/gradesync"
	"github.com/nsip/otf-gradesync/internal/locale"
	"github.com/nsip/otf-gradesync/internal/scheme"
	"github.com/nsip/otf-gradesync/internal/util"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

var ErrNoSession = errors.New("no such session")

//
// one grading-view activation: the grade field, the picker
// built over it, and the score text shown beside it
//
type Session struct {
	ID           string
	CourseID     string
	AssignmentID string
	Created      time.Time

	mu     sync.Mutex
	field  *gradesync.Field
	picker *gradesync.Synchronizer
	grade  *gradeText
}

// gradeText lets the host refresh the score text between events.
type gradeText struct {
	text locale.GradeText
	// points possible is read once at activation
	possible float64
}

func (g *gradeText) CurrentScore() float64   { return g.text.CurrentScore() }
func (g *gradeText) PointsPossible() float64 { return g.possible }

type Params struct {
	CourseID     string
	AssignmentID string
	// current text of the grade input
	Value string
	// the host's "( current / possible )" text
	GradeText string
	Locale    string
	Config    gradesync.Config
}

func New(std scheme.Standard, p Params) (*Session, error) {

	gt := locale.GradeText{Text: p.GradeText, Tag: locale.Tag(p.Locale)}
	grade := &gradeText{text: gt, possible: gt.PointsPossible()}

	field := gradesync.NewField(p.Value)
	picker, err := gradesync.New(std, field, p.Config, grade)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:           util.GenerateID(),
		CourseID:     p.CourseID,
		AssignmentID: p.AssignmentID,
		Created:      time.Now(),
		field:        field,
		picker:       picker,
		grade:        grade,
	}, nil
}

//
// applies an event, refreshing the score text first
// when the host supplies a new one
//
func (s *Session) Handle(ev gradesync.Event, gradeText string) (gradesync.Outcome, gradesync.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gradeText != "" {
		s.grade.text.Text = gradeText
	}
	out, err := s.picker.Handle(ev)
	return out, s.picker.View(), err
}

func (s *Session) View() gradesync.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picker.View()
}

//
// sessions keyed by id, expiring after ttl of inactivity
//
type Store struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{c: cache.New(ttl, 2*ttl), ttl: ttl}
}

func (st *Store) Put(s *Session) {
	st.c.Set(s.ID, s, cache.DefaultExpiration)
}

//
// fetches a session and extends its lifetime
//
func (st *Store) Get(id string) (*Session, error) {
	v, found := st.c.Get(id)
	if !found {
		return nil, errors.Wrap(ErrNoSession, id)
	}
	s := v.(*Session)
	st.c.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

func (st *Store) Delete(id string) bool {
	if _, found := st.c.Get(id); !found {
		return false
	}
	st.c.Delete(id)
	return true
}

func (st *Store) Count() int {
	return st.c.ItemCount()
}
