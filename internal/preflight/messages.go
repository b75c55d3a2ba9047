package preflight

import (
	"fmt"
	"strings"
)

const welcomeMessage = `●

Welcome to **Open Interpreter**.`

const localModelNotice = "**Open Interpreter** will use `Mistral 7B` for local execution."

const openAIKeyMissingNotice = `---
> OpenAI API key not found

To use ` + "`GPT-4`" + ` (recommended) please provide an OpenAI API key.

To use ` + "`Mistral-7B`" + ` (free but less capable) press ` + "`enter`" + `.

---`

const switchToLocalNotice = `> Switching to ` + "`Mistral-7B`" + `...

**Tip:** Run ` + "`interpreter --local`" + ` to automatically use ` + "`Mistral-7B`" + `.

---`

const saveKeyTip = `**Tip:** To save this key for later, run ` + "`export OPENAI_API_KEY=your_api_key`" + ` on Mac/Linux or ` + "`setx OPENAI_API_KEY your_api_key`" + ` on Windows.

---`

func installingNotice(pkg, minVersion string) string {
	return fmt.Sprintf("> Installing `%s>=%s` for Bedrock models...", pkg, minVersion)
}

func installFailedMessage(pkg, minVersion string) string {
	return fmt.Sprintf("Failed to install %s. Please install it manually with version >= %s.", pkg, minVersion)
}

func modelConfirmation(model string) string {
	return fmt.Sprintf("> Model set to `%s`", strings.ToUpper(model))
}
