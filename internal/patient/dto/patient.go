package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"focusmeet-backend/internal/patient/domain"
)

// Optional tells an absent JSON field apart from one sent as null
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Present reports whether the field was sent with a non-null value
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// FlexInt accepts 42 as well as "42", since form inputs often post numbers as strings
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		return f.parse(string(n))
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("age must be a number")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	return f.parse(s)
}

func (f *FlexInt) parse(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("age must be an integer")
	}
	*f = FlexInt(n)
	return nil
}

// PatientInput is the body of create and update. Name is required on both.
type PatientInput struct {
	Name      Optional[string]  `json:"name"`
	Age       Optional[FlexInt] `json:"age"`
	Phone     Optional[string]  `json:"phone"`
	Email     Optional[string]  `json:"email"`
	Diagnosis Optional[string]  `json:"diagnosis"`
	Notes     Optional[string]  `json:"notes"`
}

type CreatePatientResponse struct {
	OK      bool            `json:"ok"`
	ID      string          `json:"id"`
	Patient *domain.Patient `json:"patient"`
}
