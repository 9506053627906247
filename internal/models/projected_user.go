package models

// ProjectedUser is the flattened, host-shaped view of a BizBox member.
// Username and Roles are always set; everything else may be nil.
type ProjectedUser struct {
	Username  string
	FirstName *string
	LastName  *string
	Email     *string
	Roles     []string

	UserSeq               *string
	EmployeeSeq           *string
	BirthDay              *string
	Gender                *string
	MobileTelephoneNumber *string
	InnerTelephoneNumber  *string
	FaxTelephoneNumber    *string
	PositionCode          *string
	PositionName          *string
	DutyCode              *string
	DutyName              *string
	MainWork              *string
	PictureFileID         *string
	GroupSeq              *string
	BizSeq                *string
	CompanySeq            *string
	CompanyName           *string

	DepartmentSeq           *string
	DepartmentName          *string
	DepartmentAddress       *string
	DepartmentDetailAddress *string
	DepartmentZipCode       *string
	DepartmentDepth         *int
	ParentSeq               *string
	PathName                *string
}
