package zcl

// CommandSchema resolves command metadata for a cluster role. Server role
// commands are the ones a server receives; client role commands the ones a
// client receives.
type CommandSchema struct {
	catalog *Catalog
}

// ListFor returns the commands of a role in catalogue order, empty when the
// role defines none.
func (s *CommandSchema) ListFor(clusterID uint16, role Role) ([]CommandDef, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	c, err := s.catalog.lookup(clusterID)
	if err != nil {
		return nil, err
	}
	result := []CommandDef{}
	if rd := c.Role(role); rd != nil {
		for _, cmd := range rd.Commands {
			result = append(result, cmd.clone())
		}
	}
	return result, nil
}

// Resolve returns one command.
func (s *CommandSchema) Resolve(clusterID uint16, role Role, commandID uint8) (CommandDef, error) {
	cmd, err := s.find(clusterID, role, commandID)
	if err != nil {
		return CommandDef{}, err
	}
	return cmd.clone(), nil
}

// IsMandatory reports the required flag of a command. An unknown command is
// a NotFoundError, never false: "optional" and "absent" are different answers.
func (s *CommandSchema) IsMandatory(clusterID uint16, role Role, commandID uint8) (bool, error) {
	cmd, err := s.find(clusterID, role, commandID)
	if err != nil {
		return false, err
	}
	return cmd.Required, nil
}

// Mandatory returns the required commands of a role.
func (s *CommandSchema) Mandatory(clusterID uint16, role Role) ([]CommandDef, error) {
	all, err := s.ListFor(clusterID, role)
	if err != nil {
		return nil, err
	}
	result := []CommandDef{}
	for _, cmd := range all {
		if cmd.Required {
			result = append(result, cmd)
		}
	}
	return result, nil
}

func (s *CommandSchema) find(clusterID uint16, role Role, commandID uint8) (*CommandDef, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	c, err := s.catalog.lookup(clusterID)
	if err != nil {
		return nil, err
	}
	cmd := c.FindCommand(role, commandID)
	if cmd == nil {
		return nil, &NotFoundError{Kind: KindCommand, ClusterID: clusterID, Role: role, ID: uint16(commandID)}
	}
	return cmd, nil
}
