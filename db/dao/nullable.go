package dao

import "database/sql"

type NullString struct {
	sql.NullString
}

// AsString if the value is NULL, returns ""
func (ns *NullString) AsString() string {
	if !ns.NullString.Valid {
		return ""
	}
	return ns.NullString.String
}

func ToNullString(val string) NullString {
	return NullString{sql.NullString{String: val, Valid: val != ""}}
}
