package usecase

// Export for testing
var (
	ParseDistroList = parseDistroList
	DecodeWSLOutput = decodeWSLOutput
	PickGistFile    = pickGistFile
	GistFileBytes   = gistFileBytes
)
