package service

import (
	"fmt"
	"strings"

	"docqa/internal/ai"
	"docqa/internal/model"
)

const (
	answerContextSeparator  = "\n---DOCUMENT---\n"
	suggestContextSeparator = "\n-----DOCUMENT-----\n"
	quizContextSeparator    = "\n---\n"

	assistantTruncateLen = 500
)

const strictContextSystem = "You are a helpful assistant. Answer the user's question ONLY using the information " +
	"present in the provided CONTEXT. Do NOT use any knowledge outside this context. " +
	"If the exact answer is not present, respond honestly: 'I don't know from the provided documents.' " +
	"Otherwise, use all relevant information in the context to provide the best possible answer " +
	"without guessing or hallucinating.\n\n" +
	"CONTEXT:\n"

const initialSuggestionSystem = "You are an intelligent recommended questions generator. Your task is to provide 3 concise, " +
	"relevant, and thought-provoking questions. " +
	"These questions MUST be based **EXCLUSIVELY** on the provided CONTEXT. " +
	"IMPORTANT: You MUST ensure the 3 questions cover the most important and **distinct topics** present across **ALL documents** mentioned in the CONTEXT. " +
	"Each question must be a single, short sentence. " +
	"Format: Return ONLY a numbered list (1. 2. 3.) with one question per line. " +
	"Do NOT include any introductory text, explanations, or concluding remarks."

const followupSuggestionSystem = "You are an intelligent follow-up questions generator. " +
	"Your task is to provide 3 NEW questions that explore DIFFERENT topics or aspects from the documents. " +
	"These questions MUST be based on the provided CONTEXT. " +
	"\n**CRITICAL INSTRUCTIONS:**\n" +
	"1. Review the FULL CONVERSATION HISTORY (all user queries and assistant answers)\n" +
	"2. Identify what topics and information have ALREADY been covered\n" +
	"3. Generate questions about COMPLETELY DIFFERENT topics or unexplored aspects\n" +
	"4. DO NOT ask about information already provided in previous answers\n" +
	"5. Help the user discover NEW information from the documents\n" +
	"6. Each question must be a single, short sentence\n" +
	"\nFormat: Return ONLY a numbered list (1. 2. 3.) with one question per line. " +
	"Do NOT include any introductory text, explanations, or concluding remarks."

const followupSuggestionTask = "\n**YOUR TASK:** Based on the conversation history above, generate 3 NEW questions about " +
	"topics and information NOT YET covered. Explore different aspects of the documents that " +
	"haven't been discussed yet."

// buildStrictContextPrompt instructs the model to answer only from the
// retrieved passages.
func buildStrictContextPrompt(query string, contexts []string) []ai.Message {
	return []ai.Message{
		{Role: model.RoleSystem, Content: strictContextSystem + strings.Join(contexts, answerContextSeparator)},
		{Role: model.RoleUser, Content: "QUESTION: " + query},
	}
}

// buildSuggestionPrompt switches between discovery questions for a
// fresh session and follow-up questions grounded in the conversation
// so far. History is expected oldest first.
func buildSuggestionPrompt(contextText string, history []*model.ChatMessage) []ai.Message {
	if len(history) < 2 {
		return []ai.Message{
			{Role: model.RoleSystem, Content: initialSuggestionSystem},
			{Role: model.RoleUser, Content: "CONTEXT:\n" + contextText},
		}
	}
	var sb strings.Builder
	sb.WriteString("CONTEXT:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n**FULL CONVERSATION HISTORY:**\n")
	turn := 0
	// Pair each user query with the assistant answer that follows it.
	// Unpaired messages (system notices, consecutive user queries) are
	// skipped.
	for i := 0; i < len(history)-1; {
		msg, next := history[i], history[i+1]
		if msg.Role != model.RoleUser || next.Role != model.RoleAssistant {
			i++
			continue
		}
		turn++
		answer := next.Content
		if runes := []rune(answer); len(runes) > assistantTruncateLen {
			answer = string(runes[:assistantTruncateLen]) + "..."
		}
		fmt.Fprintf(&sb, "\n--- Turn %d ---\n", turn)
		fmt.Fprintf(&sb, "User: %s\n", msg.Content)
		fmt.Fprintf(&sb, "Assistant: %s\n", answer)
		i += 2
	}
	sb.WriteString(followupSuggestionTask)
	return []ai.Message{
		{Role: model.RoleSystem, Content: followupSuggestionSystem},
		{Role: model.RoleUser, Content: sb.String()},
	}
}

// buildQuizPrompt demands a bare JSON array of MCQ objects grounded in
// the supplied excerpts.
func buildQuizPrompt(contexts []string, count int) []ai.Message {
	system := "You are an expert quiz generator. Your **SOLE** task is to create multiple-choice questions (MCQs) " +
		"BASED **STRICTLY AND EXCLUSIVELY** ON THE PROVIDED CONTEXT. " +
		"**EVERY** question, **EVERY** option (A, B, C, D), and the **CORRECT ANSWER** " +
		"**MUST** be verifiable and directly supported by the text in the CONTEXT. " +
		"Do NOT use external knowledge or invent information. " +
		"If the context does not contain enough information, create fewer questions or state you cannot complete the request.\n\n" +
		fmt.Sprintf("Generate %d MCQs. The response **MUST** be a single, valid JSON array containing objects for each question. ", count) +
		"Each question object must strictly include the following keys: 'question', 'choices' (an object with keys A, B, C, D), and 'correct_answer' (the letter A, B, C, or D). " +
		"Do not include any text before or after the JSON array."
	return []ai.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: "CONTEXT:\n" + strings.Join(contexts, quizContextSeparator)},
	}
}
