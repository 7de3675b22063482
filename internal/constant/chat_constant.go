package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

const (
	ContentTypeProject     = "project"
	ContentTypeGeneralInfo = "general_info"
)
