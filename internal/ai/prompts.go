package ai

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every generation: the assistant drafts sections of
// Brazilian procurement planning documents (ETP and TR) under Lei
// 14.133/2021 in formal administrative Portuguese.
const SystemPrompt = `Você é um assistente especializado na elaboração de documentos de planejamento de contratações públicas (Estudo Técnico Preliminar e Termo de Referência), conforme a Lei nº 14.133/2021. Redija em português formal, de forma objetiva e tecnicamente fundamentada. Responda apenas com o conteúdo solicitado, sem preâmbulos.`

// withContext appends the supporting-context block to a prompt, if any.
func withContext(prompt, contextBlock string) string {
	if strings.TrimSpace(contextBlock) == "" {
		return prompt
	}
	return prompt + "\n\nUtilize as informações de apoio abaixo quando forem pertinentes:\n\n" + contextBlock
}

// DraftPrompt asks for the content of one section.
func DraftPrompt(docLabel, sectionTitle, userInput, contextBlock string) string {
	p := fmt.Sprintf(
		"Redija a seção %q de um %s.\n\nInformações fornecidas pelo requisitante:\n%s",
		sectionTitle, docLabel, strings.TrimSpace(userInput),
	)
	return withContext(p, contextBlock)
}

// RiskPrompt asks for a risk analysis of the document's current content.
func RiskPrompt(docLabel, docText, contextBlock string) string {
	p := fmt.Sprintf(
		"Analise os riscos da contratação descrita no %s abaixo. Identifique os principais riscos, sua probabilidade, impacto e medidas de mitigação.\n\n%s",
		docLabel, strings.TrimSpace(docText),
	)
	return withContext(p, contextBlock)
}

// CompliancePrompt asks for a regulatory-compliance check.
func CompliancePrompt(docLabel, docText, contextBlock string) string {
	p := fmt.Sprintf(
		"Verifique a conformidade do %s abaixo com a Lei nº 14.133/2021. Aponte seções ausentes ou insuficientes e as exigências legais correspondentes.\n\n%s",
		docLabel, strings.TrimSpace(docText),
	)
	return withContext(p, contextBlock)
}

// RefinePrompt asks for a rewrite of existing section content following an
// instruction.
func RefinePrompt(sectionTitle, current, instruction, contextBlock string) string {
	p := fmt.Sprintf(
		"Reescreva o texto da seção %q abaixo seguindo esta instrução: %s\n\nTexto atual:\n%s",
		sectionTitle, strings.TrimSpace(instruction), strings.TrimSpace(current),
	)
	return withContext(p, contextBlock)
}

// SummaryPrompt asks for an executive summary of the document.
func SummaryPrompt(docLabel, docText string) string {
	return fmt.Sprintf(
		"Elabore um resumo executivo do %s abaixo, em até três parágrafos.\n\n%s",
		docLabel, strings.TrimSpace(docText),
	)
}

// DocLabel returns the human label used in prompts for a document type id.
func DocLabel(docType string) string {
	switch docType {
	case "etp":
		return "Estudo Técnico Preliminar (ETP)"
	case "tr":
		return "Termo de Referência (TR)"
	default:
		return "documento"
	}
}
