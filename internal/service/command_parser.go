package service

import "strings"

// ParseCommandLine turns one operator CLI line into an AdminCommand.
// Commands that address a room take positional arguments:
//
//	m <announcement text>
//	deletemsg <roomid> <msgid>
//	deleteroom <roomid>
//	highlight <roomid> [message text]
//
// Everything else passes through as a bare command word. Returns false
// for blank lines.
func ParseCommandLine(line string) (AdminCommand, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return AdminCommand{}, false
	}

	if strings.HasPrefix(line, "m ") {
		return AdminCommand{Command: line}, true
	}

	fields := strings.Fields(line)
	cmd := AdminCommand{Command: fields[0]}

	switch fields[0] {
	case "deletemsg":
		if len(fields) > 1 {
			cmd.RoomID = fields[1]
		}
		if len(fields) > 2 {
			cmd.MsgID = fields[2]
		}
	case "deleteroom":
		if len(fields) > 1 {
			cmd.RoomID = fields[1]
		}
	case "highlight":
		if len(fields) > 1 {
			cmd.RoomID = fields[1]
		}
		if len(fields) > 2 {
			cmd.Message = strings.Join(fields[2:], " ")
		}
	}

	return cmd, true
}
