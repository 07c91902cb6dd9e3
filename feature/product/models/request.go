package models

// EnvironmentSelection holds the test, staging and prod flags of a create or
// repair request. Every flag must be present.
type EnvironmentSelection struct {
	Test    *bool `json:"test"`
	Staging *bool `json:"staging"`
	Prod    *bool `json:"prod"`
}

// Targets returns the selected environments in test, staging, prod order.
func (s EnvironmentSelection) Targets() ([]string, error) {
	flags := []struct {
		name string
		set  *bool
	}{
		{"test", s.Test},
		{"staging", s.Staging},
		{"prod", s.Prod},
	}

	targets := []string{}
	for _, f := range flags {
		if f.set == nil {
			return nil, &MissingFieldError{Field: f.name + " attribute"}
		}
		if *f.set {
			targets = append(targets, f.name)
		}
	}
	return targets, nil
}

// Select builds a selection flagging exactly the named environments.
func Select(environments ...string) EnvironmentSelection {
	f, t := false, true
	s := EnvironmentSelection{Test: &f, Staging: &f, Prod: &f}
	for _, env := range environments {
		switch env {
		case "test":
			s.Test = &t
		case "staging":
			s.Staging = &t
		case "prod":
			s.Prod = &t
		}
	}
	return s
}

// CreateRequest is the body of a direct product create.
type CreateRequest struct {
	ProductDetails
	EnvironmentSelection
}
