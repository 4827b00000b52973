package viewmodel

// IndexPage holds data for the channel list page.
type IndexPage struct {
	Title      string
	Channels   []string
	SocketPath string
	ScriptPath string
}
