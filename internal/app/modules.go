package app

import (
	"github.com/vk/conveyorgo/internal/registry"
	"github.com/vk/conveyorgo/modules/archive"
	"github.com/vk/conveyorgo/modules/print"
	"github.com/vk/conveyorgo/modules/publish"
)

// coreModules are the built-in actions available to every pipeline.
var coreModules = []registry.Module{
	&archive.Module{},
	&print.Module{},
	&publish.Module{},
}
