package flags

import "github.com/urfave/cli/v2"

const (
	StoreCategory    = "STORE"
	AgentCategory    = "AGENT"
	ActorCategory    = "ACTOR"
	HardwareCategory = "HARDWARE"
	MultisigCategory = "MULTISIG"
	LoggingCategory  = "LOGGING AND DEBUGGING"
	MiscCategory     = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
