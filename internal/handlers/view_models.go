package handlers

import (
	"scavenger/internal/fourbyfour"
	"scavenger/internal/models"
	"time"
)

type PuzzleView struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type MapLocationView struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

type MapView struct {
	Locations []MapLocationView `json:"locations"`
}

type AdminPuzzleView struct {
	Name      string    `json:"name"`
	Answer    string    `json:"answer"`
	Active    bool      `json:"active"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type VisitorView struct {
	UID        string     `json:"uid"`
	UserAgent  string     `json:"user_agent,omitempty"`
	CheckedIn  time.Time  `json:"checked_in"`
	CheckedOut *time.Time `json:"checked_out,omitempty"`
}

type VisitorStatusView struct {
	UID            string  `json:"uid"`
	CorrectAnswers int     `json:"correct_answers"`
	ActivePuzzles  int     `json:"active_puzzles"`
	Ratio          float64 `json:"ratio"`
	Succeeded      bool    `json:"succeeded"`
	Completed      bool    `json:"completed"`
	CheckedOut     bool    `json:"checked_out"`
}

type PoolEntryView struct {
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

type ResponseView struct {
	Puzzle    string    `json:"puzzle"`
	Visitor   string    `json:"visitor"`
	Answer    string    `json:"answer"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"created_at"`
}

type HomeViewData struct {
	Registered bool               `json:"registered"`
	Visitor    *VisitorStatusView `json:"visitor,omitempty"`
	Puzzles    []PuzzleView       `json:"puzzles"`
}

type AnswerView struct {
	Puzzle        string `json:"puzzle"`
	Correct       bool   `json:"correct"`
	AlreadySolved bool   `json:"already_solved"`
}

type WordView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

type CategoryView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Words []WordView `json:"words"`
}

// FourByFourView is a visitor's board. Only solved categories are listed.
type FourByFourView struct {
	Puzzle            string         `json:"puzzle"`
	State             string         `json:"state"`
	Solved            []CategoryView `json:"solved"`
	Words             []WordView     `json:"words"`
	MistakesAvailable int            `json:"mistakes_available"`
	SelectableAtOnce  int            `json:"selectable_at_once"`
	NumSelected       int            `json:"num_selected"`
	CanSubmit         bool           `json:"can_submit"`
	Outcome           string         `json:"outcome,omitempty"`
	OneAway           bool           `json:"one_away,omitempty"`
	Message           string         `json:"message,omitempty"`
}

type AnagramView struct {
	Puzzle string `json:"puzzle"`
	Word   string `json:"word"`
}

func newPuzzleView(p models.Puzzle) PuzzleView {
	return PuzzleView{Name: p.Name, Location: p.Location}
}

func newAdminPuzzleView(p *models.Puzzle) AdminPuzzleView {
	return AdminPuzzleView{
		Name:      p.Name,
		Answer:    p.Answer,
		Active:    p.Active,
		Location:  p.Location,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

func newVisitorView(v *models.Visitor) VisitorView {
	return VisitorView{
		UID:        v.UID,
		UserAgent:  v.UserAgent,
		CheckedIn:  v.CheckedIn,
		CheckedOut: v.CheckedOut,
	}
}

func newVisitorStatusView(s models.VisitorStatus) *VisitorStatusView {
	return &VisitorStatusView{
		UID:            s.UID,
		CorrectAnswers: s.CorrectAnswers,
		ActivePuzzles:  s.ActivePuzzles,
		Ratio:          s.Ratio(),
		Succeeded:      s.Succeeded(),
		Completed:      s.Completed(),
		CheckedOut:     s.CheckedOut,
	}
}

func newResponseView(r models.Response) ResponseView {
	return ResponseView{
		Puzzle:    r.PuzzleName,
		Visitor:   r.VisitorUID,
		Answer:    r.Answer,
		Correct:   r.IsCorrect,
		CreatedAt: r.CreatedAt,
	}
}

func newWordViews(words []*fourbyfour.Word) []WordView {
	views := make([]WordView, 0, len(words))
	for _, w := range words {
		views = append(views, WordView{ID: w.ID, Text: w.Text, Selected: w.IsSelected})
	}
	return views
}

func newFourByFourView(puzzleName string, p *fourbyfour.PuzzleStatus) FourByFourView {
	view := FourByFourView{
		Puzzle:            puzzleName,
		State:             p.State().String(),
		Solved:            []CategoryView{},
		Words:             newWordViews(p.Words),
		MistakesAvailable: p.MistakesAvailable,
		SelectableAtOnce:  p.SelectableAtOnce,
		NumSelected:       p.NumSelected(),
		CanSubmit:         p.CanSubmit(),
	}
	for _, c := range p.Categories {
		if !c.IsSolved {
			continue
		}
		view.Solved = append(view.Solved, CategoryView{
			ID:    c.ID,
			Name:  c.Name(),
			Words: newWordViews(c.Words),
		})
	}
	return view
}
