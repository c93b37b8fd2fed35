package groups

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rdkcentral/dobbytest/internal/runner"
)

// Group names in execution order.
const (
	BasicSanityTests       = "basic_sanity_tests"
	ContainerManipulations = "container_manipulations"
	CommandLineContainers  = "command_line_containers"
	StartFromBundle        = "start_from_bundle"
	BundleGeneration       = "bundle_generation"
	PluginLauncher         = "plugin_launcher"
	ThunderPlugin          = "thunder_plugin"
	GUIContainers          = "gui_containers"
	NetworkTests           = "network_tests"
)

type entry struct {
	description string
	run         runFunc
}

// catalog is the fixed group list. Insertion order is execution order.
var catalog = newCatalog()

func newCatalog() *orderedmap.OrderedMap[string, entry] {
	m := orderedmap.New[string, entry]()
	m.Set(BasicSanityTests, entry{"Start and stop DobbyDaemon and talk to it with DobbyTool", runBasicSanity})
	m.Set(ContainerManipulations, entry{"Start, pause, resume, inspect and stop a container", runContainerManipulations})
	m.Set(CommandLineContainers, entry{"Start a container with a command line override and check its output", runCommandLineContainers})
	m.Set(StartFromBundle, entry{"Extract an OCI bundle and start a container from it", runStartFromBundle})
	m.Set(BundleGeneration, entry{"Generate bundles from Dobby specs and compare them with expected configs", runBundleGeneration})
	m.Set(PluginLauncher, entry{"Run RDK plugin hooks through DobbyPluginLauncher", runPluginLauncher})
	m.Set(ThunderPlugin, entry{"Drive containers through the Thunder OCIContainer plugin", runThunderPlugin})
	m.Set(GUIContainers, entry{"Start a Wayland client container on the device display", runGUIContainers})
	m.Set(NetworkTests, entry{"Send a message from a container to the host over the Dobby network", runNetworkTests})
	return m
}

// Info describes one group for listings.
type Info struct {
	Name        string
	Description string
}

// Default returns every group, in execution order, bound to env.
func Default(env *Env) []runner.Group {
	groups := make([]runner.Group, 0, catalog.Len())
	for pair := catalog.Oldest(); pair != nil; pair = pair.Next() {
		groups = append(groups, &group{
			name:        pair.Key,
			description: pair.Value.description,
			env:         env,
			run:         pair.Value.run,
		})
	}
	return groups
}

// List returns the name and description of every group, in execution order.
func List() []Info {
	infos := make([]Info, 0, catalog.Len())
	for pair := catalog.Oldest(); pair != nil; pair = pair.Next() {
		infos = append(infos, Info{Name: pair.Key, Description: pair.Value.description})
	}
	return infos
}
