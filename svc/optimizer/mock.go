package optimizer

import (
	"fmt"
	"strings"
)

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"programming", []string{"code", "programming", "develop"}},
	{"marketing", []string{"marketing", "sales", "promotion"}},
	{"content creation", []string{"write", "content", "article"}},
	{"design", []string{"design", "ui", "interface"}},
	{"data analysis", []string{"data", "analysis", "statistics"}},
}

// topicOf guesses the field of a prompt from its keywords.
func topicOf(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, t := range topicKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.topic
			}
		}
	}
	return "relevant field"
}

// Mock returns the deterministic template result for prompt and strategy.
// It is what Service.Optimize answers when the provider is unavailable.
func Mock(prompt string, strategy Strategy) Result {
	topic := topicOf(prompt)

	switch strategy {
	case Clarity:
		return Result{
			OptimizedPrompt: fmt.Sprintf("Please clearly explain the basic concepts, main characteristics, and practical applications of %s.\n\n"+
				"Please use simple and understandable language, avoid technical jargon, and if you must use them, please explain them.", topic),
			Scores: Scores{Clarity: 9, Specificity: 7, Effectiveness: 8},
			Analysis: Analysis{
				Improvements: "Simplified language expression, clarified explanation requirements, avoided complex terminology usage.",
				Issues: []string{
					"Original prompt expression was not clear enough",
					"May contain ambiguous statements",
					"Lacked clear language requirements",
				},
			},
			Alternatives: []Alternative{{
				Prompt: fmt.Sprintf("Explain %s step by step, using examples to illustrate each concept.", topic),
				Reason: "Step-by-step explanation with examples for better understanding",
			}},
			Degraded: true,
		}

	case Specificity:
		return Result{
			OptimizedPrompt: fmt.Sprintf("Please provide a comprehensive analysis of %s with the following specific requirements:\n\n"+
				"1. Definition and scope\n"+
				"2. Key components or elements\n"+
				"3. Implementation steps or methodology\n"+
				"4. Best practices and common pitfalls\n"+
				"5. Measurable outcomes or success metrics\n\n"+
				"Format: Use bullet points and numbered lists for clarity.", topic),
			Scores: Scores{Clarity: 8, Specificity: 10, Effectiveness: 9},
			Analysis: Analysis{
				Improvements: "Added specific structure requirements, clear deliverables, and formatting guidelines.",
				Issues: []string{
					"Original prompt lacked specific requirements",
					"No clear structure or format specified",
					"Missing measurable criteria",
				},
			},
			Alternatives: []Alternative{{
				Prompt: fmt.Sprintf("Create a detailed guide for %s including prerequisites, step-by-step instructions, and troubleshooting tips.", topic),
				Reason: "Focuses on practical implementation with troubleshooting support",
			}},
			Degraded: true,
		}

	case Creativity:
		return Result{
			OptimizedPrompt: fmt.Sprintf("Think creatively about %s and explore it from multiple innovative angles:\n\n"+
				"1. Challenge conventional approaches\n"+
				"2. Propose novel solutions or perspectives\n"+
				"3. Connect ideas from different fields\n"+
				"4. Consider future possibilities and trends\n"+
				"5. Generate original concepts or frameworks\n\n"+
				"Please think outside the box and surprise me with your insights.", topic),
			Scores: Scores{Clarity: 7, Specificity: 8, Effectiveness: 9},
			Analysis: Analysis{
				Improvements: "Enhanced creative thinking prompts, encouraged innovation and cross-field connections.",
				Issues: []string{
					"Original prompt was too conventional",
					"Lacked creativity triggers",
					"Missing innovation encouragement",
				},
			},
			Alternatives: []Alternative{{
				Prompt: fmt.Sprintf("Reimagine %s as if you were from the future looking back, or from a completely different industry perspective.", topic),
				Reason: "Uses perspective shifting to unlock creative thinking",
			}},
			Degraded: true,
		}
	}

	task := strings.Replace(prompt, "write", "create", 1)
	task = strings.Replace(task, "make", "develop", 1)
	return Result{
		OptimizedPrompt: fmt.Sprintf("As a professional %s expert, please help me %s.\n\n"+
			"Requirements:\n"+
			"1. Content structure should be clear with strong logic\n"+
			"2. Language should be professional, accurate, and easy to understand\n"+
			"3. Include specific examples and data support\n"+
			"4. Word count should be 800-1200 words\n"+
			"5. Please use a general-specific-general structure\n\n"+
			"Please reflect your professional knowledge and practical experience in your response.", topic, task),
		Scores: Scores{Clarity: 8, Specificity: 9, Effectiveness: 8},
		Analysis: Analysis{
			Improvements: "Added role setting, clarified output requirements, specified word count range and structure requirements, making the prompt more specific and professional.",
			Issues: []string{
				"Original prompt was too simple, lacking specific requirements",
				"No clear role and output format specified",
				"Lacked constraints and quality standards",
			},
		},
		Alternatives: []Alternative{
			{
				Prompt: fmt.Sprintf("Please help me create detailed content about %s, including background introduction, core viewpoints, case analysis, and summary recommendations.", topic),
				Reason: "More focused on content completeness and structure",
			},
			{
				Prompt: fmt.Sprintf("Introduce %s in Q&A format, including 5-8 core questions and their detailed answers.", topic),
				Reason: "Uses Q&A format, easier to understand and remember",
			},
		},
		Degraded: true,
	}
}
