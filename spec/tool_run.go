package spec

import llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

const (
	FuncIDCodeRun llmtoolsgoSpec.FuncID = "github.com/flexigpt/coderunner-go/spec/tools.code.run"
	FuncIDCodeFix llmtoolsgoSpec.FuncID = "github.com/flexigpt/coderunner-go/spec/tools.code.fix"
)

func CodeRunTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "019e0a4c-2f61-7b3a-9c1e-5d7e0b8a1f01",
		Slug:          "code.run",
		Version:       "v1.0.0",
		DisplayName:   "Code Run",
		Description:   "Repair the formatting of a script, then run it with one input line per interactive prompt.",
		Tags:          []string{"code", "exec"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
  "$schema":"http://json-schema.org/draft-07/schema#",
  "type":"object",
  "properties":{
    "code":{"type":"string","description":"Script source; may be collapsed onto one line or wrapped in a fenced block."},
    "inputs":{"type":"array","items":{"type":"string"},"description":"Answers for the script's input prompts, in order."}
  },
  "required":["code"],
  "additionalProperties":false
}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDCodeRun},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}

func CodeFixTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "019e0a4c-2f61-7b3a-9c1e-5d7e0b8a1f02",
		Slug:          "code.fix",
		Version:       "v1.0.0",
		DisplayName:   "Code Fix",
		Description:   "Repair the formatting of a script and list the prompts it will ask for, without running it.",
		Tags:          []string{"code"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
  "$schema":"http://json-schema.org/draft-07/schema#",
  "type":"object",
  "properties":{
    "code":{"type":"string"}
  },
  "required":["code"],
  "additionalProperties":false
}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDCodeFix},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}
