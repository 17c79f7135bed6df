package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		currentProject,
		fx.Annotate(execCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(extract, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(migrate, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(newCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(schema, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(tables, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(testCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
