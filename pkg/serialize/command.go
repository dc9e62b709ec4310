package serialize

import (
	"fmt"
	"strconv"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize/status"
)

// Expected revisions other than concrete ones
const (
	ExpectForced = "forced"
	ExpectSafe   = "safe"
)

// CommandDoc is the document form of a command or a transaction.
//
// ID names the model, object or field added or removed. Expect is "forced", "safe"
// (the default) or a concrete revision.
type CommandDoc struct {
	Type     string       `json:"type" yaml:"type"`
	Target   string       `json:"target" yaml:"target"`
	ID       string       `json:"id,omitempty" yaml:"id,omitempty"`
	Expect   string       `json:"expect,omitempty" yaml:"expect,omitempty"`
	Value    *ValueDoc    `json:"value,omitempty" yaml:"value,omitempty"`
	Commands []CommandDoc `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// CommandsDoc is a sequence of commands issued by some actor
type CommandsDoc struct {
	Actor    string       `json:"actor,omitempty" yaml:"actor,omitempty"`
	Commands []CommandDoc `json:"commands" yaml:"commands"`
}

// FromCommand builds the document of a command
func FromCommand(cmd command.Command) CommandDoc {
	d := CommandDoc{
		Type:   cmd.ChangeType().String(),
		Target: cmd.Target().String(),
	}
	switch c := cmd.(type) {
	case *command.Transaction:
		for _, atomic := range c.Commands() {
			d.Commands = append(d.Commands, FromCommand(atomic))
		}
		return d
	case *command.RepositoryCommand:
		d.ID = string(c.ModelID())
	case *command.ModelCommand:
		d.ID = string(c.ObjectID())
	case *command.ObjectCommand:
		d.ID = string(c.FieldID())
	case *command.FieldCommand:
		d.Value = FromValue(c.Value())
	}
	d.Expect = formatExpect(cmd.Revision())
	return d
}

// Command decoded from this document
func (d CommandDoc) Command() (command.Command, error) {
	changeType, ok := command.ParseChangeType(d.Type)
	if !ok {
		return nil, status.ErrInvalidCommand.WrapMessage(fmt.Sprintf("unknown type %q", d.Type))
	}
	target, err := model.ParseAddress(d.Target)
	if err != nil {
		return nil, status.ErrInvalidCommand.Wrap(err)
	}

	if changeType == command.TransactionChange {
		commands := make([]command.Command, 0, len(d.Commands))
		for _, cd := range d.Commands {
			cmd, err := cd.Command()
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmd)
		}
		return command.NewTransaction(target, commands...)
	}
	if len(d.Commands) > 0 {
		return nil, status.ErrInvalidCommand.WrapMessage("only transactions hold commands")
	}

	rev, err := parseExpect(d.Expect)
	if err != nil {
		return nil, err
	}

	if target.Kind() == model.KindField {
		return d.valueCommand(target, changeType, rev)
	}
	return d.membershipCommand(target, changeType, rev)
}

func (d CommandDoc) membershipCommand(target model.Address, changeType command.ChangeType, rev int64) (command.Command, error) {
	id, err := model.NewID(d.ID)
	if err != nil {
		return nil, status.ErrInvalidCommand.Wrap(err)
	}
	forced := rev == command.RevForced

	switch {
	case changeType == command.Add && target.Kind() == model.KindRepository:
		return command.AddModel(target, id, forced)
	case changeType == command.Remove && target.Kind() == model.KindRepository:
		return command.RemoveModel(target, id, rev)
	case changeType == command.Add && target.Kind() == model.KindModel:
		return command.AddObject(target, id, forced)
	case changeType == command.Remove && target.Kind() == model.KindModel:
		return command.RemoveObject(target, id, rev)
	case changeType == command.Add && target.Kind() == model.KindObject:
		return command.AddField(target, id, forced)
	case changeType == command.Remove && target.Kind() == model.KindObject:
		return command.RemoveField(target, id, rev)
	default:
		return nil, status.ErrInvalidCommand.WrapMessage(fmt.Sprintf("cannot %s on %v", d.Type, target))
	}
}

func (d CommandDoc) valueCommand(target model.Address, changeType command.ChangeType, rev int64) (command.Command, error) {
	value, err := d.Value.Value()
	if err != nil {
		return nil, err
	}
	switch changeType {
	case command.Add:
		return command.AddValue(target, rev, value)
	case command.Change:
		return command.ChangeValue(target, rev, value)
	case command.Remove:
		return command.RemoveValue(target, rev)
	default:
		return nil, status.ErrInvalidCommand.WrapMessage(fmt.Sprintf("cannot %s on %v", d.Type, target))
	}
}

// FromCommands builds the document of a sequence of commands
func FromCommands(actor model.ID, commands ...command.Command) CommandsDoc {
	d := CommandsDoc{Actor: string(actor), Commands: make([]CommandDoc, 0, len(commands))}
	for _, cmd := range commands {
		d.Commands = append(d.Commands, FromCommand(cmd))
	}
	return d
}

// Decode the commands of this document
func (d CommandsDoc) Decode() ([]command.Command, error) {
	commands := make([]command.Command, 0, len(d.Commands))
	for i, cd := range d.Commands {
		cmd, err := cd.Command()
		if err != nil {
			return nil, status.ErrInvalidCommand.Wrap(fmt.Errorf("command #%d: %w", i, err))
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func formatExpect(rev int64) string {
	switch rev {
	case command.RevForced:
		return ExpectForced
	case command.RevSafe:
		return ExpectSafe
	default:
		return strconv.FormatInt(rev, 10)
	}
}

func parseExpect(s string) (int64, error) {
	switch s {
	case ExpectForced:
		return command.RevForced, nil
	case ExpectSafe, "":
		return command.RevSafe, nil
	}
	rev, err := strconv.ParseInt(s, 10, 64)
	if err != nil || rev < 0 {
		return 0, status.ErrInvalidCommand.WrapMessage(fmt.Sprintf("invalid expected revision %q", s))
	}
	return rev, nil
}

// MarshalCommand encodes a command
func MarshalCommand(format Format, cmd command.Command) ([]byte, error) {
	return Marshal(format, FromCommand(cmd))
}

// UnmarshalCommand decodes a command
func UnmarshalCommand(format Format, data []byte) (command.Command, error) {
	var d CommandDoc
	if err := Unmarshal(format, data, &d); err != nil {
		return nil, status.ErrInvalidCommand.Wrap(err)
	}
	return d.Command()
}

// UnmarshalCommands decodes a sequence of commands and the actor issuing them
func UnmarshalCommands(format Format, data []byte) (model.ID, []command.Command, error) {
	var d CommandsDoc
	if err := Unmarshal(format, data, &d); err != nil {
		return "", nil, status.ErrInvalidCommand.Wrap(err)
	}
	commands, err := d.Decode()
	if err != nil {
		return "", nil, err
	}
	return model.ID(d.Actor), commands, nil
}
