package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/dojo-hub/dojo-community-hub/internal/domain/attendance"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/progression"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/schedule"
	"github.com/dojo-hub/dojo-community-hub/internal/domain/shared"
)

// In-memory fakes shared by the command handler tests.

type fakeIDGen struct {
	mu sync.Mutex
	n  int
}

// NewID returns deterministic UUID-shaped ids so commands that re-parse
// them through shared.NewClassID accept them.
func (g *fakeIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}

type capturedEvents struct {
	mu     sync.Mutex
	events []shared.Event
}

func (c *capturedEvents) Publish(event shared.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) byType(t shared.EventType) []shared.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []shared.Event
	for _, e := range c.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type memScheduleRepo struct {
	mu            sync.Mutex
	fixed         map[shared.ClassID]schedule.FixedClass
	flexible      map[shared.ClassID]schedule.FlexibleClass
	cancellations map[shared.ClassID]schedule.Cancellation
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{
		fixed:         make(map[shared.ClassID]schedule.FixedClass),
		flexible:      make(map[shared.ClassID]schedule.FlexibleClass),
		cancellations: make(map[shared.ClassID]schedule.Cancellation),
	}
}

func (r *memScheduleRepo) ListFixed(_ context.Context, cityID shared.CityID) ([]schedule.FixedClass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schedule.FixedClass
	for _, c := range r.fixed {
		if c.CityID == cityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memScheduleRepo) GetFixed(_ context.Context, id shared.ClassID) (*schedule.FixedClass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.fixed[id]
	if !ok {
		return nil, shared.ErrClassNotFound
	}
	return &c, nil
}

func (r *memScheduleRepo) CreateFixed(_ context.Context, class *schedule.FixedClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixed[class.ID] = *class
	return nil
}

func (r *memScheduleRepo) UpdateFixed(_ context.Context, class *schedule.FixedClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fixed[class.ID]; !ok {
		return shared.ErrClassNotFound
	}
	r.fixed[class.ID] = *class
	return nil
}

func (r *memScheduleRepo) DeleteFixed(_ context.Context, id shared.ClassID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fixed[id]; !ok {
		return shared.ErrClassNotFound
	}
	delete(r.fixed, id)
	return nil
}

func (r *memScheduleRepo) ListFlexible(_ context.Context, cityID shared.CityID) ([]schedule.FlexibleClass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schedule.FlexibleClass
	for _, c := range r.flexible {
		if c.CityID == cityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memScheduleRepo) GetFlexible(_ context.Context, id shared.ClassID) (*schedule.FlexibleClass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.flexible[id]
	if !ok {
		return nil, shared.ErrClassNotFound
	}
	return &c, nil
}

func (r *memScheduleRepo) CreateFlexible(_ context.Context, class *schedule.FlexibleClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flexible[class.ID] = *class
	return nil
}

func (r *memScheduleRepo) DeleteFlexible(_ context.Context, id shared.ClassID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flexible[id]; !ok {
		return shared.ErrClassNotFound
	}
	delete(r.flexible, id)
	return nil
}

func (r *memScheduleRepo) ListCancellations(_ context.Context, cityID shared.CityID) ([]schedule.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schedule.Cancellation
	for _, c := range r.cancellations {
		if c.CityID == cityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memScheduleRepo) GetCancellation(_ context.Context, id shared.ClassID) (*schedule.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cancellations[id]
	if !ok {
		return nil, shared.ErrCancellationNotFound
	}
	return &c, nil
}

func (r *memScheduleRepo) CreateCancellation(_ context.Context, cancellation *schedule.Cancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancellations[cancellation.ID] = *cancellation
	return nil
}

func (r *memScheduleRepo) DeleteCancellation(_ context.Context, id shared.ClassID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cancellations[id]; !ok {
		return shared.ErrCancellationNotFound
	}
	delete(r.cancellations, id)
	return nil
}

type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record // cityID + "|" + session key
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]attendance.Record)}
}

func attendanceKey(cityID shared.CityID, key shared.SessionKey) string {
	return cityID.String() + "|" + key.String()
}

func (r *memAttendanceRepo) Get(_ context.Context, cityID shared.CityID, key shared.SessionKey) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[attendanceKey(cityID, key)]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return &rec, nil
}

func (r *memAttendanceRepo) Upsert(_ context.Context, record *attendance.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[attendanceKey(record.CityID, record.SessionKey())] = *record
	return nil
}

func (r *memAttendanceRepo) ListByCity(_ context.Context, cityID shared.CityID, limit int) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.CityID == cityID {
			out = append(out, rec)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type memStudentRepo struct {
	mu       sync.Mutex
	students map[shared.StudentID]progression.Student
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: make(map[shared.StudentID]progression.Student)}
}

func (r *memStudentRepo) GetByID(_ context.Context, id shared.StudentID) (*progression.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return &s, nil
}

func (r *memStudentRepo) Create(_ context.Context, student *progression.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) Update(_ context.Context, student *progression.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[student.ID] = *student
	return nil
}

func (r *memStudentRepo) IncrementAttendance(_ context.Context, id shared.StudentID, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return 0, shared.ErrStudentNotFound
	}
	s.ClassesAttended += delta
	if s.ClassesAttended < 0 {
		s.ClassesAttended = 0
	}
	r.students[id] = s
	return s.ClassesAttended, nil
}

func (r *memStudentRepo) ListByCity(_ context.Context, cityID shared.CityID) ([]progression.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progression.Student
	for _, s := range r.students {
		if s.CityID == cityID {
			out = append(out, s)
		}
	}
	return out, nil
}

// memProgress backs progression.ProgressStore with the student and mark
// fakes; the in-memory variant applies the two writes sequentially.
type memProgress struct {
	students *memStudentRepo
	marks    *memMarkRepo
}

func (p *memProgress) ApplyAttendanceDelta(
	ctx context.Context,
	id shared.StudentID,
	delta int,
	evaluate func(newTotal int) []progression.MilestoneID,
) (int, []progression.MilestoneID, error) {
	total, err := p.students.IncrementAttendance(ctx, id, delta)
	if err != nil {
		return 0, nil, err
	}
	if evaluate == nil {
		return total, nil, nil
	}
	var created []progression.MilestoneID
	for _, milestone := range evaluate(total) {
		ok, err := p.marks.RecordMark(ctx, id, milestone)
		if err != nil {
			return 0, nil, err
		}
		if ok {
			created = append(created, milestone)
		}
	}
	return total, created, nil
}

type memMarkRepo struct {
	mu    sync.Mutex
	marks map[shared.StudentID]map[progression.MilestoneID]bool
}

func newMemMarkRepo() *memMarkRepo {
	return &memMarkRepo{marks: make(map[shared.StudentID]map[progression.MilestoneID]bool)}
}

func (r *memMarkRepo) ListMarks(_ context.Context, id shared.StudentID) ([]progression.MilestoneID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progression.MilestoneID
	for m := range r.marks[id] {
		out = append(out, m)
	}
	return out, nil
}

func (r *memMarkRepo) RecordMark(_ context.Context, id shared.StudentID, milestone progression.MilestoneID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.marks[id] == nil {
		r.marks[id] = make(map[progression.MilestoneID]bool)
	}
	if r.marks[id][milestone] {
		return false, nil
	}
	r.marks[id][milestone] = true
	return true, nil
}
