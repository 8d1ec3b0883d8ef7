package typeloader

import (
	"github.com/typeloader/typeloader/pkg/sdk"
)

// hostModule is the module path manifest libraries name to require this host.
const hostModule = "github.com/typeloader/typeloader"

// Noop is a plugin that does nothing. Manifest libraries can bind to it to
// check that a plugin directory is wired up.
type Noop struct{}

func (Noop) PluginName() string { return "noop" }

func init() {
	must(sdk.Default.RegisterType("typeloader.Plugin", sdk.TypeOf[sdk.Plugin]()))
	must(sdk.Register("typeloader.Noop", Noop{}))
	must(sdk.Provide(hostModule, version))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
