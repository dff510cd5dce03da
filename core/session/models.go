package session

// Roles
const (
	RoleGuest   Role = "guest"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type Role string

var rolePriorities = map[Role]int{
	RoleGuest:   0,
	RoleTeacher: 1,
	RoleAdmin:   2,
}

func (r Role) Priority() int {
	return rolePriorities[r]
}

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

// Permissions is the capability set granted to a role.
type Permissions struct {
	CanViewStudents   bool
	CanViewAttendance bool
	CanViewGrades     bool
	CanEditAttendance bool
	CanEditGrades     bool
	CanManageStudents bool
	CanManageGroups   bool
	CanManageSubjects bool
	CanAccessAdmin    bool
}

// rolePermissions is the single source of truth for what each role may do.
// Both the CRUD layer and navigation consult it through the Service's
// predicates; it is never duplicated elsewhere.
var rolePermissions = map[Role]Permissions{
	RoleGuest: {
		CanViewStudents:   true,
		CanViewAttendance: true,
		CanViewGrades:     true,
	},
	RoleTeacher: {
		CanViewStudents:   true,
		CanViewAttendance: true,
		CanViewGrades:     true,
		CanEditAttendance: true,
		CanEditGrades:     true,
	},
	RoleAdmin: {
		CanViewStudents:   true,
		CanViewAttendance: true,
		CanViewGrades:     true,
		CanEditAttendance: true,
		CanEditGrades:     true,
		CanManageStudents: true,
		CanManageGroups:   true,
		CanManageSubjects: true,
		CanAccessAdmin:    true,
	},
}

func (r Role) Permissions() Permissions {
	return rolePermissions[r]
}

// storedSession is the durable session record. Expiry is an absolute unix
// timestamp in milliseconds; it is additionally mirrored under its own key.
type storedSession struct {
	Role   Role  `json:"role"`
	Expiry int64 `json:"expiry"`
}

// durable storage keys, shared with the previous client generation
const (
	authStateKey = "college_schedule_auth"
	expiryKey    = "college_schedule_session_expiry"
)
