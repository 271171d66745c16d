package entity

import "regexp"

// AudioChunk — один фрагмент загружаемого файла.
type AudioChunk struct {
	Raw         []byte
	FileName    string
	ChunkIndex  int
	TotalChunks int
	UploadID    string
}

// ChunkResult — результат приёма фрагмента. AssemblyDone выставляется только
// после приёма последнего фрагмента и успешной сборки файла.
type ChunkResult struct {
	AssemblyDone bool
	RequestID    string
}

// AssetUpload — подготовленный к публикации на платформе файл.
type AssetUpload struct {
	FileName    string
	DisplayName string
	Description string
	ContentType string
	FilePath    string
}

// Имя файла обязано иметь вид "<категория> --- <название>[.расширение]".
var audioFileNameRegex = regexp.MustCompile(`^(\S.*) --- (\S.*?)(?:\..*)?$`)

const (
	maxAudioCategoryLen = 1000
	maxAudioNameLen     = 50
)

// ValidAudioFileName сообщает, соответствует ли имя файла требуемому шаблону.
func ValidAudioFileName(fileName string) bool {
	return audioFileNameRegex.MatchString(fileName)
}

// ParseAudioFileName извлекает из имени файла категорию и название аудио.
// Категория обрезается до 1000 символов, название — до 50.
func ParseAudioFileName(fileName string) (category string, name string, ok bool) {
	match := audioFileNameRegex.FindStringSubmatch(fileName)
	if match == nil {
		return "", "", false
	}
	category, name = match[1], match[2]
	if len(category) > maxAudioCategoryLen {
		category = category[:maxAudioCategoryLen]
	}
	if len(name) > maxAudioNameLen {
		name = name[:maxAudioNameLen]
	}
	return category, name, true
}
