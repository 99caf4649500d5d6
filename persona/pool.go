package persona

import (
	"fmt"

	"github.com/sat8bit/sembang/configs"
	"gopkg.in/yaml.v3"
)

// NewPool は、埋め込みリソースからペルソナを読み込みます。
func NewPool() (*Pool, error) {
	p, err := LoadPool(configs.Personas)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded Personas: %w", err)
	}
	return p, nil
}

// LoadPool は、YAML からペルソナを読み込みます。
func LoadPool(data []byte) (*Pool, error) {
	var p Pool
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	for _, persona := range p.Personas {
		if persona.PersonaId == "" {
			return nil, fmt.Errorf("persona %q has no personaId", persona.DisplayName)
		}
		switch persona.Role {
		case RoleBot, RoleLearner:
		default:
			return nil, fmt.Errorf("persona '%s' has unknown role %q", persona.PersonaId, persona.Role)
		}
	}
	return &p, nil
}

type Pool struct {
	// Personas は、読み込まれた Persona のスライスです。
	Personas []*Persona `yaml:"personas"`
}

func (p *Pool) GetAll() []*Persona {
	if p == nil {
		return nil
	}
	return p.Personas
}

func (p *Pool) GetByPersonaId(personaId string) (*Persona, error) {
	for _, persona := range p.GetAll() {
		if persona.PersonaId == personaId {
			return persona, nil
		}
	}
	return nil, fmt.Errorf("persona with id '%s' not found", personaId)
}

// GetByRole は、指定した役割を持つ最初のペルソナを返します。
func (p *Pool) GetByRole(role Role) (*Persona, error) {
	for _, persona := range p.GetAll() {
		if persona.Role == role {
			return persona, nil
		}
	}
	return nil, fmt.Errorf("no persona with role '%s'", role)
}
