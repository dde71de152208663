package agent

import (
	"context"
	"fmt"
	"sort"

	"vendor_recon/pkg/core/llm"
)

// Config selects the active provider globally and per agent type. Agent
// types in use: "table_extractor", "total_extractor", "column_mapper".
type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional model override
	Description string `yaml:"description"`
}

type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"openai": &llm.OpenAIProvider{},
			"gemini": &llm.GeminiProvider{},
		},
	}
}

// GetProvider resolves the provider for an agent type: agent override
// first, then the global active provider, then OpenAI.
func (m *Manager) GetProvider(agentType string) llm.Provider {
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["openai"]
}

func (m *Manager) options(agentType string) map[string]interface{} {
	options := map[string]interface{}{}
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Model != "" {
		options["model"] = agentConfig.Model
	}
	return options
}

// ExecutePrompt runs a plain text prompt through the agent's provider.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string) (string, error) {
	return m.GetProvider(agentType).GenerateResponse(ctx, prompt, systemPrompt, m.options(agentType))
}

// ExecuteDocumentPrompt runs a document-grounded prompt. userComments, when
// non-empty, is forwarded as additional context for the model.
func (m *Manager) ExecuteDocumentPrompt(ctx context.Context, agentType string, document []byte, mimeType string, prompt string, systemPrompt string, userComments string) (string, error) {
	options := m.options(agentType)
	if userComments != "" {
		options["user_comments"] = userComments
	}
	return m.GetProvider(agentType).GenerateWithDocument(ctx, document, mimeType, prompt, systemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("Global provider set to: %s\n", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}

// Available lists the registered provider names.
func (m *Manager) Available() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
