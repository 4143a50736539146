package entity

import "strconv"

// UserID identifies a User aggregate. It is the only way to reference a user
// from outside the aggregate.
type UserID struct {
	value int64
}

func NewUserID(v int64) (UserID, error) {
	if v <= 0 {
		return UserID{}, ErrInvalidUserID
	}
	return UserID{value: v}, nil
}

// ParseUserID parses the decimal form used by transport layers.
func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return UserID{}, ErrInvalidUserID
	}
	return NewUserID(v)
}

func (id UserID) Int64() int64            { return id.value }
func (id UserID) String() string          { return strconv.FormatInt(id.value, 10) }
func (id UserID) IsZero() bool            { return id.value == 0 }
func (id UserID) Equals(other UserID) bool { return id.value == other.value }
