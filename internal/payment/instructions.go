package payment

import "strings"

var instructionMap = map[Method][]string{
	MethodCOD: {
		"Your order {{order_number}} will be delivered to the shipping address",
		"Keep {{amount}} ready in cash when the courier arrives",
		"Pay the courier directly and collect the receipt",
	},
	MethodCard: {
		"Enter your card number, expiry and CVV on the payment page",
		"Complete the one-time password check from your bank",
		"Wait until the payment of {{amount}} is confirmed",
	},
	MethodUPI: {
		"Open any UPI app and approve the collect request for {{amount}}",
		"Use {{order_number}} as the reference if asked",
	},
	MethodNetBanking: {
		"Choose your bank on the payment page and sign in",
		"Authorise the transfer of {{amount}} for order {{order_number}}",
	},
	MethodWallet: {
		"Select your wallet on the payment page",
		"Approve the debit of {{amount}} in the wallet app",
	},
}

func GetInstructions(method Method) []string {
	if steps, ok := instructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment instructions shown on this page",
	}
}

type InstructionVars map[string]string

func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}
