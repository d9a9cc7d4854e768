package model

// Country 题目实体
// 静态地理数据集由外部协作方提供，核心只消费
type Country struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Continent  string `json:"continent"`
	Capital    string `json:"capital,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// ChoiceOption 选择题候选项，不携带任何正确性标记
type ChoiceOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
