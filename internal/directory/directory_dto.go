package directory

// Profile is the cached, display ready view of an employee.
type Profile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

// Reviewers is the recipient configuration resolved at submission time.
type Reviewers struct {
	ReviewerID int64
	CC         []int64
}

func mapToProfile(e Employee) Profile {
	p := Profile{
		ID:          e.ID,
		Name:        e.FullName(),
		Designation: notAvailable,
		Department:  notAvailable,
	}
	if e.Designation != nil && *e.Designation != "" {
		p.Designation = *e.Designation
	}
	if e.Department != nil && *e.Department != "" {
		p.Department = *e.Department
	}
	return p
}
