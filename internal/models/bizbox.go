package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TokenRequest is the payload sent to the BizBox token endpoint
type TokenRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// TokenResponse is the decoded envelope of the BizBox token endpoint.
// The token itself is located with a configurable path, so it is not a field here.
type TokenResponse struct {
	Token         string `json:"-"`
	ResultCode    string `json:"resultCode,omitempty"`
	ResultMessage string `json:"resultMessage,omitempty"`
}

// ProfileResponse is the body of the BizBox profile endpoint.
// List is nil when the backend omits the "list" field entirely.
type ProfileResponse struct {
	List *[]Member `json:"list"`
}

// Members returns the member list, or nil when the backend omitted it
func (r *ProfileResponse) Members() []Member {
	if r == nil || r.List == nil {
		return nil
	}
	return *r.List
}

// PersonName is the nested name record of a member
type PersonName struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UnmarshalJSON accepts numbers and booleans for the name fields
func (p *PersonName) UnmarshalJSON(data []byte) error {
	type personName PersonName
	normalized, err := lenientObject(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, (*personName)(p))
}

// Member is one affiliation of a person in BizBox. A person may have several.
type Member struct {
	LoginID    string      `json:"loginId"`
	Seq        *string     `json:"seq"`
	EmpSeq     *string     `json:"empSeq"`
	PersonName *PersonName `json:"personName"`
	Email      *string     `json:"email"`
	BirthDay   *string     `json:"birthDay"`
	Gender     *string     `json:"gender"`

	MobileTelephoneNumber *string `json:"mobileTelephoneNumber"`
	TelephoneNumber       *string `json:"telephoneNumber"`
	FaxNumber             *string `json:"faxNumber"`

	PositionCode     *string `json:"positionCode"`
	PositionCodeName *string `json:"positionCodeName"`
	DutyCode         *string `json:"dutyCode"`
	DutyCodeName     *string `json:"dutyCodeName"`
	MainWork         *string `json:"mainWork"`
	PictureFileID    *string `json:"pictureFileId"`

	GroupSeq    *string `json:"groupSeq"`
	BizSeq      *string `json:"bizSeq"`
	CompanySeq  *string `json:"compSeq"`
	CompanyName *string `json:"compName"`

	DepartmentSeq           *string `json:"deptSeq"`
	DepartmentName          *string `json:"deptName"`
	DepartmentAddress       *string `json:"deptAddr"`
	DepartmentDetailAddress *string `json:"deptDetailAddr"`
	DepartmentZipCode       *string `json:"deptZipCode"`
	Depth                   *int    `json:"depth"`
	ParentSeq               *string `json:"parentSeq"`
	PathName                *string `json:"pathName"`
}

// UnmarshalJSON decodes a member the way BizBox deployments actually emit it.
// Sequence and code fields arrive as numbers on some installations, so any
// number or boolean is kept as its literal text. Depth also accepts a quoted
// integer, and an empty string reads as absent.
func (m *Member) UnmarshalJSON(data []byte) error {
	type member Member
	normalized, err := lenientObject(data, "depth")
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, (*member)(m))
}

// lenientObject rewrites the scalar values of a JSON object so they decode
// into string fields, except for intKeys which are coerced to integers.
func lenientObject(data []byte, intKeys ...string) ([]byte, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return data, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key, value := range raw {
		if isIntKey(key, intKeys) {
			coerced, err := lenientInt(value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			raw[key] = coerced
			continue
		}
		raw[key] = lenientString(value)
	}
	return json.Marshal(raw)
}

func isIntKey(key string, intKeys []string) bool {
	for _, k := range intKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func lenientString(value json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return value
	}
	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') || c == 't' || c == 'f' {
		quoted, err := json.Marshal(string(trimmed))
		if err != nil {
			return value
		}
		return quoted
	}
	return value
}

func lenientInt(value json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return value, nil
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return json.RawMessage("null"), nil
		}
	} else if trimmed[0] != '-' && (trimmed[0] < '0' || trimmed[0] > '9') {
		// null, or a shape the int field rejects on its own
		return value, nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		return json.RawMessage(strconv.Itoa(n)), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil, fmt.Errorf("not an integer: %s", text)
	}
	return json.RawMessage(strconv.Itoa(int(f))), nil
}
