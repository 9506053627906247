package profile

import (
	"strconv"

	"github.com/devfury/ezcaretech-auth/internal/models"
)

// Host attribute names written for every provisioned user
const (
	AttrUserSeq                 = "userSeq"
	AttrEmployeeSeq             = "empSeq"
	AttrBirthDay                = "birthDay"
	AttrMobileTelNumber         = "mobileTelNumber"
	AttrInnerTelNumber          = "innerTelNumber"
	AttrFaxTelNumber            = "faxTelNumber"
	AttrPositionCode            = "positionCode"
	AttrPositionName            = "positionName"
	AttrDutyCode                = "dutyCode"
	AttrDutyName                = "dutyName"
	AttrMainWork                = "mainWork"
	AttrPictureFileID           = "picFileId"
	AttrGroupSeq                = "groupSeq"
	AttrBizSeq                  = "bizSeq"
	AttrCompanySeq              = "compSeq"
	AttrCompanyName             = "compName"
	AttrDepartmentSeq           = "deptSeq"
	AttrDepartmentName          = "deptName"
	AttrDepartmentAddress       = "deptAddr"
	AttrDepartmentDetailAddress = "deptDetailAddr"
	AttrDepartmentZipCode       = "deptZipCode"
	AttrDepartmentDepth         = "deptDepth"
	AttrParentSeq               = "parentSeq"
	AttrPathName                = "pathName"
)

// Attribute is one host attribute write. A nil Value clears the attribute.
type Attribute struct {
	Name  string
	Value *string
}

// Attributes returns the host attributes of u in a fixed order
func Attributes(u *models.ProjectedUser) []Attribute {
	var depth *string
	if u.DepartmentDepth != nil {
		s := strconv.Itoa(*u.DepartmentDepth)
		depth = &s
	}

	return []Attribute{
		{AttrUserSeq, u.UserSeq},
		{AttrEmployeeSeq, u.EmployeeSeq},
		{AttrBirthDay, u.BirthDay},
		{AttrMobileTelNumber, u.MobileTelephoneNumber},
		{AttrInnerTelNumber, u.InnerTelephoneNumber},
		{AttrFaxTelNumber, u.FaxTelephoneNumber},
		{AttrPositionCode, u.PositionCode},
		{AttrPositionName, u.PositionName},
		{AttrDutyCode, u.DutyCode},
		{AttrDutyName, u.DutyName},
		{AttrMainWork, u.MainWork},
		{AttrPictureFileID, u.PictureFileID},
		{AttrGroupSeq, u.GroupSeq},
		{AttrBizSeq, u.BizSeq},
		{AttrCompanySeq, u.CompanySeq},
		{AttrCompanyName, u.CompanyName},
		{AttrDepartmentSeq, u.DepartmentSeq},
		{AttrDepartmentName, u.DepartmentName},
		{AttrDepartmentAddress, u.DepartmentAddress},
		{AttrDepartmentDetailAddress, u.DepartmentDetailAddress},
		{AttrDepartmentZipCode, u.DepartmentZipCode},
		{AttrDepartmentDepth, depth},
		{AttrParentSeq, u.ParentSeq},
		{AttrPathName, u.PathName},
	}
}
