package profile

import (
	"slices"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

// MemberSelector picks the affiliation that represents username.
// It returns nil when no member matches.
type MemberSelector func(members []models.Member, username string) *models.Member

// Projector turns a BizBox profile into the host-shaped ProjectedUser.
// The zero value selects the first case-insensitive loginId match and grants config.DefaultRole.
type Projector struct {
	Select MemberSelector
	Roles  []string
}

// NewProjector creates a Projector granting roles with the default selector
func NewProjector(roles []string) *Projector {
	return &Projector{
		Select: FirstMatch,
		Roles:  slices.Clone(roles),
	}
}

// Project maps the member matching username onto a ProjectedUser.
// It returns nil when the response is nil, has no list, or no member matches.
func (p *Projector) Project(resp *models.ProfileResponse, username string) *models.ProjectedUser {
	members := resp.Members()
	if len(members) == 0 {
		return nil
	}

	selectMember := p.Select
	if selectMember == nil {
		selectMember = FirstMatch
	}
	m := selectMember(members, username)
	if m == nil {
		return nil
	}

	roles := p.Roles
	if len(roles) == 0 {
		roles = []string{config.DefaultRole}
	}

	u := &models.ProjectedUser{
		Username: m.LoginID,
		Email:    cloneString(m.Email),
		Roles:    slices.Clone(roles),

		UserSeq:               cloneString(m.Seq),
		EmployeeSeq:           cloneString(m.EmpSeq),
		BirthDay:              cloneString(m.BirthDay),
		Gender:                cloneString(m.Gender),
		MobileTelephoneNumber: cloneString(m.MobileTelephoneNumber),
		InnerTelephoneNumber:  cloneString(m.TelephoneNumber),
		FaxTelephoneNumber:    cloneString(m.FaxNumber),
		PositionCode:          cloneString(m.PositionCode),
		PositionName:          cloneString(m.PositionCodeName),
		DutyCode:              cloneString(m.DutyCode),
		DutyName:              cloneString(m.DutyCodeName),
		MainWork:              cloneString(m.MainWork),
		PictureFileID:         cloneString(m.PictureFileID),
		GroupSeq:              cloneString(m.GroupSeq),
		BizSeq:                cloneString(m.BizSeq),
		CompanySeq:            cloneString(m.CompanySeq),
		CompanyName:           cloneString(m.CompanyName),

		DepartmentSeq:           cloneString(m.DepartmentSeq),
		DepartmentName:          cloneString(m.DepartmentName),
		DepartmentAddress:       cloneString(m.DepartmentAddress),
		DepartmentDetailAddress: cloneString(m.DepartmentDetailAddress),
		DepartmentZipCode:       cloneString(m.DepartmentZipCode),
		ParentSeq:               cloneString(m.ParentSeq),
		PathName:                cloneString(m.PathName),
	}

	if m.Depth != nil {
		depth := *m.Depth
		u.DepartmentDepth = &depth
	}
	if m.PersonName != nil {
		u.FirstName = cloneString(m.PersonName.FirstName)
		u.LastName = cloneString(m.PersonName.LastName)
	}

	return u
}

// FirstMatch returns the first member whose loginId equals username ignoring ASCII case
func FirstMatch(members []models.Member, username string) *models.Member {
	for i := range members {
		if equalFoldASCII(members[i].LoginID, username) {
			return &members[i]
		}
	}
	return nil
}

// equalFoldASCII is strings.EqualFold restricted to ASCII letters.
// Non-ASCII bytes must match exactly.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
