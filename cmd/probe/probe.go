package probe

import (
	"github.com/spf13/cobra"
	"github/chapool/go-safe/internal/util/command"
)

const (
	safeFlag string = "safe"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newVersion(),
		newChain(),
	)
}
