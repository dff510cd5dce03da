// Package journal is the client's record cache and CRUD engine for the
// five entity collections, plus the derived views every screen consumes.
//
// The remote store is the source of truth: every mutation is written
// through first and the in-memory collections are updated only after the
// remote write is confirmed. Authorization and not-found failures are
// silent no-ops by contract; remote I/O failures are recovered locally and
// surfaced as per-collection error strings.
package journal

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"dnevnik/core"
	"dnevnik/core/session"
	"dnevnik/storage/remote"
)

// logical paths within the shared remote store
const (
	pathStudents   = "students"
	pathGroups     = "groups"
	pathSubjects   = "subjects"
	pathAttendance = "attendance"
	pathGrades     = "grades"
)

// user-visible load failure messages
const (
	errLoadStudents   = "Ошибка загрузки студентов"
	errLoadGroups     = "Ошибка загрузки групп"
	errLoadSubjects   = "Ошибка загрузки предметов"
	errLoadAttendance = "Ошибка загрузки посещаемости"
	errLoadGrades     = "Ошибка загрузки оценок"
)

// Filters is the settled filter state consumed by the derived views.
type Filters struct {
	GroupID string
	Search  string
}

type Service struct {
	session *session.Service
	gw      remote.Gateway
	log     core.Logger

	nowFunc func() time.Time // mockable
	idFunc  func() string

	mu         sync.RWMutex
	students   []Student
	groups     []Group
	subjects   []Subject
	attendance []AttendanceRecord
	grades     []Grade

	studentsLoading   bool
	groupsLoading     bool
	subjectsLoading   bool
	attendanceLoading bool
	gradesLoading     bool

	studentsErr   string
	groupsErr     string
	subjectsErr   string
	attendanceErr string
	gradesErr     string

	filters           Filters
	selectedSubjectID string
	selectedDate      string

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

func NewService(sess *session.Service, gw remote.Gateway, log core.Logger) *Service {
	svc := &Service{
		session:   sess,
		gw:        gw,
		log:       log,
		nowFunc:   time.Now,
		idFunc:    uuid.NewString,
		listeners: make(map[int]func()),
	}
	svc.selectedDate = svc.nowFunc().UTC().Format(DateLayout)
	return svc
}

// Subscribe registers a listener invoked after every completed mutation.
// The returned func removes the listener.
func (svc *Service) Subscribe(fn func()) func() {
	svc.listenerMu.Lock()
	defer svc.listenerMu.Unlock()
	id := svc.nextID
	svc.nextID++
	svc.listeners[id] = fn
	return func() {
		svc.listenerMu.Lock()
		defer svc.listenerMu.Unlock()
		delete(svc.listeners, id)
	}
}

func (svc *Service) notify() {
	svc.listenerMu.Lock()
	fns := make([]func(), 0, len(svc.listeners))
	for _, fn := range svc.listeners {
		fns = append(fns, fn)
	}
	svc.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// decodeCollection turns the remote object (id -> record) into a slice.
// A nil/null value means the collection simply has no records yet.
func decodeCollection[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	var records map[string]T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	return out, nil
}

// ============================================================
// Loading
// ============================================================

// load fetches one collection and replaces it wholesale. The loading flag
// is cleared regardless of outcome; on failure the collection keeps its
// last-known-good value and only the error string is set.
func load[T any](
	svc *Service, ctx context.Context, path, loadErrMsg string,
	setLoading func(bool), setErr func(string), replace func([]T),
) {
	svc.mu.Lock()
	setLoading(true)
	setErr("")
	svc.mu.Unlock()
	svc.notify()

	raw, err := svc.gw.GetData(ctx, path)
	var records []T
	if err == nil {
		records, err = decodeCollection[T](raw)
	}

	svc.mu.Lock()
	if err != nil {
		setErr(loadErrMsg)
	} else {
		replace(records)
	}
	setLoading(false)
	svc.mu.Unlock()

	if err != nil {
		svc.log.Error("loading "+path, err)
	}
	svc.notify()
}

func (svc *Service) LoadStudents(ctx context.Context) {
	load(svc, ctx, pathStudents, errLoadStudents,
		func(v bool) { svc.studentsLoading = v },
		func(v string) { svc.studentsErr = v },
		func(recs []Student) { svc.students = recs },
	)
}

func (svc *Service) LoadGroups(ctx context.Context) {
	load(svc, ctx, pathGroups, errLoadGroups,
		func(v bool) { svc.groupsLoading = v },
		func(v string) { svc.groupsErr = v },
		func(recs []Group) { svc.groups = recs },
	)
}

func (svc *Service) LoadSubjects(ctx context.Context) {
	load(svc, ctx, pathSubjects, errLoadSubjects,
		func(v bool) { svc.subjectsLoading = v },
		func(v string) { svc.subjectsErr = v },
		func(recs []Subject) { svc.subjects = recs },
	)
}

func (svc *Service) LoadAttendance(ctx context.Context) {
	load(svc, ctx, pathAttendance, errLoadAttendance,
		func(v bool) { svc.attendanceLoading = v },
		func(v string) { svc.attendanceErr = v },
		func(recs []AttendanceRecord) { svc.attendance = recs },
	)
}

func (svc *Service) LoadGrades(ctx context.Context) {
	load(svc, ctx, pathGrades, errLoadGrades,
		func(v bool) { svc.gradesLoading = v },
		func(v string) { svc.gradesErr = v },
		func(recs []Grade) { svc.grades = recs },
	)
}

// LoadAll fans out all five loads concurrently. Each load records its own
// error/loading state; one failing does not block or roll back the others,
// and no relative completion order may be assumed.
func (svc *Service) LoadAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, fn := range []func(context.Context){
		svc.LoadGroups,
		svc.LoadSubjects,
		svc.LoadStudents,
		svc.LoadAttendance,
		svc.LoadGrades,
	} {
		wg.Add(1)
		go func(fn func(context.Context)) {
			defer wg.Done()
			fn(ctx)
		}(fn)
	}
	wg.Wait()
}

// ============================================================
// Students
// ============================================================

func (svc *Service) CreateStudent(ctx context.Context, f NewStudent) *Student {
	if !svc.session.CanManageStudents() {
		return nil
	}

	now := svc.nowFunc().UTC()
	enrollment := f.EnrollmentDate
	if enrollment == "" {
		enrollment = now.Format(DateLayout)
	}
	st := Student{
		ID:             svc.idFunc(),
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		MiddleName:     f.MiddleName,
		GroupID:        f.GroupID,
		Email:          f.Email,
		Phone:          f.Phone,
		EnrollmentDate: enrollment,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := svc.gw.SetData(ctx, pathStudents+"/"+st.ID, st); err != nil {
		svc.log.Error("creating student", err)
		return nil
	}
	svc.mu.Lock()
	svc.students = append(svc.students, st)
	svc.mu.Unlock()
	svc.notify()
	return &st
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, f UpdateStudent) bool {
	if !svc.session.CanManageStudents() {
		return false
	}
	st, ok := svc.StudentByID(id)
	if !ok {
		return false
	}

	if f.FirstName != "" {
		st.FirstName = f.FirstName
	}
	if f.LastName != "" {
		st.LastName = f.LastName
	}
	if f.MiddleName != nil {
		st.MiddleName = *f.MiddleName
	}
	if f.GroupID != "" {
		st.GroupID = f.GroupID
	}
	if f.Email != "" {
		st.Email = f.Email
	}
	if f.Phone != "" {
		st.Phone = f.Phone
	}
	if f.EnrollmentDate != "" {
		st.EnrollmentDate = f.EnrollmentDate
	}
	st.UpdatedAt = svc.nowFunc().UTC()

	if err := svc.gw.SetData(ctx, pathStudents+"/"+id, st); err != nil {
		svc.log.Error("updating student", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.students {
		if svc.students[i].ID == id {
			svc.students[i] = st
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// DeleteStudent soft-deletes: the record stays in the remote store and the
// cache with isActive=false, preserving attendance/grade history.
func (svc *Service) DeleteStudent(ctx context.Context, id string) bool {
	if !svc.session.CanManageStudents() {
		return false
	}
	if _, ok := svc.StudentByID(id); !ok {
		return false
	}
	if err := svc.gw.UpdateData(ctx, pathStudents+"/"+id, map[string]interface{}{"isActive": false}); err != nil {
		svc.log.Error("deleting student", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.students {
		if svc.students[i].ID == id {
			svc.students[i].IsActive = false
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// ============================================================
// Groups
// ============================================================

func (svc *Service) CreateGroup(ctx context.Context, f NewGroup) *Group {
	if !svc.session.CanManageGroups() {
		return nil
	}

	now := svc.nowFunc().UTC()
	grp := Group{
		ID:        svc.idFunc(),
		Name:      f.Name,
		Course:    f.Course,
		Specialty: f.Specialty,
		Year:      f.Year,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.gw.SetData(ctx, pathGroups+"/"+grp.ID, grp); err != nil {
		svc.log.Error("creating group", err)
		return nil
	}
	svc.mu.Lock()
	svc.groups = append(svc.groups, grp)
	svc.mu.Unlock()
	svc.notify()
	return &grp
}

func (svc *Service) UpdateGroup(ctx context.Context, id string, f UpdateGroup) bool {
	if !svc.session.CanManageGroups() {
		return false
	}
	grp, ok := svc.GroupByID(id)
	if !ok {
		return false
	}

	if f.Name != "" {
		grp.Name = f.Name
	}
	if f.Course != 0 {
		grp.Course = f.Course
	}
	if f.Specialty != "" {
		grp.Specialty = f.Specialty
	}
	if f.Year != 0 {
		grp.Year = f.Year
	}
	grp.UpdatedAt = svc.nowFunc().UTC()

	if err := svc.gw.SetData(ctx, pathGroups+"/"+id, grp); err != nil {
		svc.log.Error("updating group", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.groups {
		if svc.groups[i].ID == id {
			svc.groups[i] = grp
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

func (svc *Service) DeleteGroup(ctx context.Context, id string) bool {
	if !svc.session.CanManageGroups() {
		return false
	}
	if _, ok := svc.GroupByID(id); !ok {
		return false
	}
	if err := svc.gw.UpdateData(ctx, pathGroups+"/"+id, map[string]interface{}{"isActive": false}); err != nil {
		svc.log.Error("deleting group", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.groups {
		if svc.groups[i].ID == id {
			svc.groups[i].IsActive = false
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// ============================================================
// Subjects
// ============================================================

func (svc *Service) CreateSubject(ctx context.Context, f NewSubject) *Subject {
	if !svc.session.CanManageSubjects() {
		return nil
	}

	now := svc.nowFunc().UTC()
	sub := Subject{
		ID:          svc.idFunc(),
		Name:        f.Name,
		ShortName:   f.ShortName,
		TeacherName: f.TeacherName,
		HoursTotal:  f.HoursTotal,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := svc.gw.SetData(ctx, pathSubjects+"/"+sub.ID, sub); err != nil {
		svc.log.Error("creating subject", err)
		return nil
	}
	svc.mu.Lock()
	svc.subjects = append(svc.subjects, sub)
	svc.mu.Unlock()
	svc.notify()
	return &sub
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, f UpdateSubject) bool {
	if !svc.session.CanManageSubjects() {
		return false
	}
	sub, ok := svc.SubjectByID(id)
	if !ok {
		return false
	}

	if f.Name != "" {
		sub.Name = f.Name
	}
	if f.ShortName != "" {
		sub.ShortName = f.ShortName
	}
	if f.TeacherName != nil {
		sub.TeacherName = *f.TeacherName
	}
	if f.HoursTotal != nil {
		sub.HoursTotal = *f.HoursTotal
	}
	sub.UpdatedAt = svc.nowFunc().UTC()

	if err := svc.gw.SetData(ctx, pathSubjects+"/"+id, sub); err != nil {
		svc.log.Error("updating subject", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.subjects {
		if svc.subjects[i].ID == id {
			svc.subjects[i] = sub
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) bool {
	if !svc.session.CanManageSubjects() {
		return false
	}
	if _, ok := svc.SubjectByID(id); !ok {
		return false
	}
	if err := svc.gw.UpdateData(ctx, pathSubjects+"/"+id, map[string]interface{}{"isActive": false}); err != nil {
		svc.log.Error("deleting subject", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.subjects {
		if svc.subjects[i].ID == id {
			svc.subjects[i].IsActive = false
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// ============================================================
// Attendance (history: create/update only, never deleted)
// ============================================================

func (svc *Service) CreateAttendance(ctx context.Context, f NewAttendance) *AttendanceRecord {
	if !svc.session.CanEditAttendance() {
		return nil
	}
	student, ok := svc.StudentByID(f.StudentID)
	if !ok {
		return nil
	}

	now := svc.nowFunc().UTC()
	rec := AttendanceRecord{
		ID:        svc.idFunc(),
		StudentID: f.StudentID,
		SubjectID: f.SubjectID,
		GroupID:   student.GroupID,
		Date:      f.Date,
		Status:    f.Status,
		Note:      f.Note,
		CreatedBy: string(svc.session.Role()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.gw.SetData(ctx, pathAttendance+"/"+rec.ID, rec); err != nil {
		svc.log.Error("creating attendance record", err)
		return nil
	}
	svc.mu.Lock()
	svc.attendance = append(svc.attendance, rec)
	svc.mu.Unlock()
	svc.notify()
	return &rec
}

func (svc *Service) UpdateAttendance(ctx context.Context, id string, f UpdateAttendance) bool {
	if !svc.session.CanEditAttendance() {
		return false
	}
	rec, ok := svc.attendanceByID(id)
	if !ok {
		return false
	}

	if f.SubjectID != "" {
		rec.SubjectID = f.SubjectID
	}
	if f.Date != "" {
		rec.Date = f.Date
	}
	if f.Status != "" {
		rec.Status = f.Status
	}
	if f.Note != nil {
		rec.Note = *f.Note
	}
	rec.UpdatedAt = svc.nowFunc().UTC()

	if err := svc.gw.SetData(ctx, pathAttendance+"/"+id, rec); err != nil {
		svc.log.Error("updating attendance record", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.attendance {
		if svc.attendance[i].ID == id {
			svc.attendance[i] = rec
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// ============================================================
// Grades (history: create/update only, never deleted)
// ============================================================

func (svc *Service) CreateGrade(ctx context.Context, f NewGrade) *Grade {
	if !svc.session.CanEditGrades() {
		return nil
	}
	student, ok := svc.StudentByID(f.StudentID)
	if !ok {
		return nil
	}

	maxValue := f.MaxValue
	if maxValue == 0 {
		maxValue = DefaultGradeMax
	}
	now := svc.nowFunc().UTC()
	grade := Grade{
		ID:          svc.idFunc(),
		StudentID:   f.StudentID,
		SubjectID:   f.SubjectID,
		GroupID:     student.GroupID,
		Value:       f.Value,
		MaxValue:    maxValue,
		Type:        f.Type,
		Date:        f.Date,
		Description: f.Description,
		CreatedBy:   string(svc.session.Role()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := svc.gw.SetData(ctx, pathGrades+"/"+grade.ID, grade); err != nil {
		svc.log.Error("creating grade", err)
		return nil
	}
	svc.mu.Lock()
	svc.grades = append(svc.grades, grade)
	svc.mu.Unlock()
	svc.notify()
	return &grade
}

func (svc *Service) UpdateGrade(ctx context.Context, id string, f UpdateGrade) bool {
	if !svc.session.CanEditGrades() {
		return false
	}
	grade, ok := svc.gradeByID(id)
	if !ok {
		return false
	}

	if f.SubjectID != "" {
		grade.SubjectID = f.SubjectID
	}
	if f.Value != nil {
		grade.Value = *f.Value
	}
	if f.MaxValue != nil {
		grade.MaxValue = *f.MaxValue
	}
	if f.Type != "" {
		grade.Type = f.Type
	}
	if f.Date != "" {
		grade.Date = f.Date
	}
	if f.Description != nil {
		grade.Description = *f.Description
	}
	grade.UpdatedAt = svc.nowFunc().UTC()

	if err := svc.gw.SetData(ctx, pathGrades+"/"+id, grade); err != nil {
		svc.log.Error("updating grade", err)
		return false
	}
	svc.mu.Lock()
	for i := range svc.grades {
		if svc.grades[i].ID == id {
			svc.grades[i] = grade
			break
		}
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

// ============================================================
// Lookups (pure scans over the current cache)
// ============================================================

func (svc *Service) StudentByID(id string) (Student, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, st := range svc.students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

func (svc *Service) GroupByID(id string) (Group, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, grp := range svc.groups {
		if grp.ID == id {
			return grp, true
		}
	}
	return Group{}, false
}

func (svc *Service) SubjectByID(id string) (Subject, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, sub := range svc.subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{}, false
}

func (svc *Service) attendanceByID(id string) (AttendanceRecord, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, rec := range svc.attendance {
		if rec.ID == id {
			return rec, true
		}
	}
	return AttendanceRecord{}, false
}

func (svc *Service) gradeByID(id string) (Grade, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, grade := range svc.grades {
		if grade.ID == id {
			return grade, true
		}
	}
	return Grade{}, false
}

// AttendanceForStudent returns the student's attendance records, optionally
// narrowed to a single calendar date (empty date means all).
func (svc *Service) AttendanceForStudent(studentID, date string) []AttendanceRecord {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]AttendanceRecord, 0)
	for _, rec := range svc.attendance {
		if rec.StudentID == studentID && (date == "" || rec.Date == date) {
			out = append(out, rec)
		}
	}
	return out
}

func (svc *Service) GradesForStudent(studentID string) []Grade {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Grade, 0)
	for _, grade := range svc.grades {
		if grade.StudentID == studentID {
			out = append(out, grade)
		}
	}
	return out
}

// ============================================================
// Collection state accessors
// ============================================================

// The copies preserve emptiness: a loaded-but-empty collection reads as
// an empty slice, never nil.

func (svc *Service) Students() []Student {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Student, len(svc.students))
	copy(out, svc.students)
	return out
}

func (svc *Service) Groups() []Group {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Group, len(svc.groups))
	copy(out, svc.groups)
	return out
}

func (svc *Service) Subjects() []Subject {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Subject, len(svc.subjects))
	copy(out, svc.subjects)
	return out
}

func (svc *Service) Attendance() []AttendanceRecord {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]AttendanceRecord, len(svc.attendance))
	copy(out, svc.attendance)
	return out
}

func (svc *Service) Grades() []Grade {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	out := make([]Grade, len(svc.grades))
	copy(out, svc.grades)
	return out
}

func (svc *Service) StudentsLoading() bool   { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.studentsLoading }
func (svc *Service) GroupsLoading() bool     { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.groupsLoading }
func (svc *Service) SubjectsLoading() bool   { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.subjectsLoading }
func (svc *Service) AttendanceLoading() bool { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.attendanceLoading }
func (svc *Service) GradesLoading() bool     { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.gradesLoading }

func (svc *Service) StudentsError() string   { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.studentsErr }
func (svc *Service) GroupsError() string     { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.groupsErr }
func (svc *Service) SubjectsError() string   { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.subjectsErr }
func (svc *Service) AttendanceError() string { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.attendanceErr }
func (svc *Service) GradesError() string     { svc.mu.RLock(); defer svc.mu.RUnlock(); return svc.gradesErr }

// ============================================================
// Filter and selection state
// ============================================================

func (svc *Service) SetGroupFilter(groupID string) {
	svc.mu.Lock()
	svc.filters.GroupID = groupID
	svc.mu.Unlock()
	svc.notify()
}

// SetSearch accepts a settled search string; debouncing the input is the
// presentation layer's concern.
func (svc *Service) SetSearch(query string) {
	svc.mu.Lock()
	svc.filters.Search = query
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) ClearFilters() {
	svc.mu.Lock()
	svc.filters = Filters{}
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) Filters() Filters {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.filters
}

func (svc *Service) SetSelectedSubject(subjectID string) {
	svc.mu.Lock()
	svc.selectedSubjectID = subjectID
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) SelectedSubject() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.selectedSubjectID
}

func (svc *Service) SetSelectedDate(date string) {
	svc.mu.Lock()
	svc.selectedDate = date
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) SelectedDate() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.selectedDate
}
