package dto

// DraftBaseDTO 草稿创建/更新的公共字段。
// type == video 要求 videoUrl 非空，否则要求 content 非空，约束在服务层校验。
type DraftBaseDTO struct {
	Type            string   `json:"type" binding:"required,oneof=document video"`
	Title           string   `json:"title" binding:"required,max=255"`
	Summary         string   `json:"summary" binding:"max=1024"`
	Content         string   `json:"content"`
	Image           string   `json:"image" binding:"omitempty,url"`
	Price           int      `json:"price" binding:"gte=0"`
	Topics          []string `json:"topics"`
	AdditionalLinks []string `json:"additionalLinks" binding:"omitempty,dive,url"`
	VideoURL        string   `json:"videoUrl" binding:"omitempty,url"`
}
