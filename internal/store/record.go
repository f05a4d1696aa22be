// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"

	"github.com/jeranaias/authvault/internal/rules"
)

// accountRecord is the persisted form of an Account. The username is
// the enclosing map key, not a field.
type accountRecord struct {
	Password string     `json:"password"`
	Admin    bool       `json:"admin"`
	Blocked  bool       `json:"blocked"`
	Rules    rulesField `json:"password_rules"`
}

// rulesField handles the schema drift in password_rules: old files
// store a bare boolean, current files store the structured object.
// The legacy form exists only at this boundary; by the time a record
// leaves the decoder it is always structured. Writing always emits
// the structured form, so a legacy file upgrades itself on first save.
type rulesField struct {
	rules.Rules
}

func (p *rulesField) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		p.Rules = rules.LegacyRules(flag)
		return nil
	}
	return json.Unmarshal(data, &p.Rules)
}

func (p rulesField) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Rules)
}
