package chat

// ANSI escape sequences for terminal output.
const (
	colReset   = "\x1b[0m"
	colBold    = "\x1b[1m"
	colRed     = "\x1b[31m"
	colGreen   = "\x1b[32m"
	colYellow  = "\x1b[33m"
	colMagenta = "\x1b[35m"
	colCyan    = "\x1b[36m"
)

const helpText = `
Commands:
  /dm <identity> <message>  - Send direct message
  /contact <identity>       - Send contact request
  /invite <identity> <name> - Invite a peer to a new group
  /vibe <secret>            - Publish a vibe commitment
  /reveal                   - Reveal the pending vibe secret
  /peers                    - List peers discovered via room messages
  /list                     - Show connected fabric contacts
  /fabric                   - Show all known fabric contacts
  /routing                  - Show the DHT routing table
  /dht                      - Show local DHT store entries
  /telemetry                - Show node telemetry
  /help                     - Show this help
  /quit                     - Exit

Anything else is broadcast to the room (Protocol v1.3).
`

// PrintHelp writes the command reference.
func (c *Client) PrintHelp() {
	c.printf("%s", helpText)
}
