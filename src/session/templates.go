package session

import (
	"fmt"
	"path"
	"strings"
)

// Template returns the boilerplate a newly created file is seeded with,
// keyed by extension. Unrecognized extensions get a minimal comment stub.
func Template(filePath string) string {
	name := path.Base(filePath)
	base := strings.TrimSuffix(name, path.Ext(name))

	switch strings.ToLower(path.Ext(name)) {
	case ".html":
		return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
</head>
<body>

</body>
</html>
`, base)
	case ".css":
		return fmt.Sprintf(`/* %s */

body {
  margin: 0;
  padding: 0;
}
`, name)
	case ".js", ".jsx":
		return fmt.Sprintf(`// %s

function main() {
  // ...
}

main();
`, name)
	case ".ts":
		return fmt.Sprintf(`// %s

export function main(): void {
  // ...
}
`, name)
	case ".tsx":
		return fmt.Sprintf(`// %s

export default function Component() {
  return null;
}
`, name)
	case ".json":
		return "{\n\n}\n"
	case ".md":
		return fmt.Sprintf("# %s\n\n", base)
	default:
		return fmt.Sprintf("// %s\n", name)
	}
}
