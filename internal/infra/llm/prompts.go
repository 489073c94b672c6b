package llm

import "fmt"

const plannerRole = "你是一个任务规划助手。"

const decomposePrompt = `你是一个任务规划助手。将用户的任务分解为具体、可执行的子任务。
规则:
1. 每个子任务应该是一个清晰的行动项
2. 子任务数量控制在3-7个
3. 按逻辑顺序排列
4. 仅输出JSON数组,不要输出Markdown代码块/解释文字
输出JSON格式: [{"title": "子任务标题", "priority": 1-3}]
用户任务: %s`

const interpretPrompt = `从用户输入中提取任务信息,仅输出JSON(不要Markdown/解释文字):
{"title": "任务标题", "due_date": "YYYY-MM-DD或null", "priority": 1-3, "category": "分类或null"}
用户输入: %s`

func decomposeMessages(title string) []Message {
	return []Message{
		{Role: "system", Content: plannerRole},
		{Role: "user", Content: fmt.Sprintf(decomposePrompt, title)},
	}
}

func interpretMessages(raw string) []Message {
	return []Message{
		{Role: "user", Content: fmt.Sprintf(interpretPrompt, raw)},
	}
}
