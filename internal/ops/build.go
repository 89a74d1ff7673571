package ops

// Builder is the production BuildOps implementation: it shells out to the
// environment-provided build sub-command (§6) through ProcessOps.
type Builder struct {
	Process ProcessOps
	Command string
}

// NewBuilder returns a BuildOps that invokes command (default "build")
// through process.
func NewBuilder(process ProcessOps, command string) *Builder {
	if command == "" {
		command = "build"
	}
	return &Builder{Process: process, Command: command}
}

func (b *Builder) BuildPackage(repoDir string) (ProcessResult, error) {
	return b.Process.Spawn(ProcessSpec{Cmd: b.Command, Cwd: repoDir})
}
