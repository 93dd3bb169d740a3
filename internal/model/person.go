package model

// CustomPerson is the roster entry that takes a name and birthdate from the caller.
const CustomPerson = "Custom"

// Person is a named subject with a birthdate used as the reference date.
type Person struct {
	Name      string `json:"name"`
	Birthdate Date   `json:"birthdate"`
	Preset    bool   `json:"preset"`
}
