package preprocess

// Document 进入预处理流水线的文档单元
// uid由调用方提供，跨批次不保证唯一；text是流水线唯一会修改的字段
type Document struct {
	UID  string `json:"uid" validate:"required"`
	Text string `json:"text"`
}
