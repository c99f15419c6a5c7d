/*
Package cli provides helpers shared by the sentinel commands.

Output formatting renders run results either as a short report or as JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

ExitCode maps command errors to exit codes: 0 when every check passed,
1 (ErrBlocked) when a run was blocked and 2 for any other failure.

SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM, used by
long-running commands such as serve.
*/
package cli
