package tdm

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "A directory template manager"
	MsgRootLong = `tdm snapshots a directory tree into a single portable template archive
and reconstructs it on demand. Save the current folder as a reusable
template with 'create', then instantiate it anywhere with 'get'.`

	MsgCreateShort    = "Create a template from the current directory"
	MsgGetShort       = "Apply a template into the current directory"
	MsgDeleteShort    = "Delete a template"
	MsgListShort      = "Show all templates"
	MsgImportShort    = "Import an external template archive"
	MsgExportShort    = "Export a template archive to a directory"
	MsgShowDirShort   = "Show the directory where templates are stored"
	MsgChangeDirShort = "Change the directory where templates are stored"
	MsgUpdateShort    = "Check for a newer release"
	MsgVersionShort   = "Print version information"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagHidden        = "Include entries beneath hidden directories"
	MsgFlagExcludeIgnore = "Exclude the .tdmignore file itself from the template"

	// Status messages
	MsgCreating         = "Creating template '%s'"
	MsgApplying         = "Applying template '%s'"
	MsgCreated          = "Template '%s' created successfully (%d files, %d empty dirs)."
	MsgApplied          = "Template '%s' applied successfully (%d files, %d dirs)."
	MsgDeleted          = "Template '%s' deleted."
	MsgNotFound         = "Template '%s' not found."
	MsgNoTemplates      = "No templates found."
	MsgAvailable        = "Available templates:"
	MsgTemplateItem     = "- %s"
	MsgImported         = "Template imported from '%s' as '%s'."
	MsgExported         = "Template '%s' exported to '%s'."
	MsgTemplatesDir     = "Templates directory: %s"
	MsgTemplatesDirSet  = "Templates directory changed to %s"
	MsgDetectedArchive  = "Detected %s file, importing..."
	MsgParseWarnings    = "Archive had %d format warning(s); see log for details."
	MsgVersionFormat    = "tdm version %s\n  commit: %s\n  built:  %s\n"
)
