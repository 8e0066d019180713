package analyzer

import (
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
)

// jsdocInfo holds the JSDoc metadata tsreflect records for a declaration.
type jsdocInfo struct {
	// Description is from the JSDoc body text or @description tag.
	Description string
	// Ignored is set by an @tsreflect-ignore tag.
	Ignored bool
}

// extractJSDoc reads the last JSDoc block attached to node.
func extractJSDoc(node *ast.Node) jsdocInfo {
	var info jsdocInfo
	if node == nil {
		return info
	}
	jsdocs := node.JSDoc(nil)
	if len(jsdocs) == 0 {
		return info
	}
	jsdoc := jsdocs[len(jsdocs)-1].AsJSDoc()

	if jsdoc.Comment != nil {
		info.Description = strings.TrimSpace(extractNodeListText(jsdoc.Comment))
	}
	if jsdoc.Tags == nil {
		return info
	}
	for _, tagNode := range jsdoc.Tags.Nodes {
		tagName, comment := extractJSDocTagInfo(tagNode)
		switch strings.ToLower(tagName) {
		case "description":
			info.Description = strings.TrimSpace(comment)
		case "tsreflect-ignore":
			info.Ignored = true
		}
	}
	return info
}

// extractJSDocTagInfo returns the name and comment of an unknown (custom) tag.
// Tags the parser knows (@param, @returns, ...) are not needed here.
func extractJSDocTagInfo(tagNode *ast.Node) (tagName string, comment string) {
	if tagNode == nil || tagNode.Kind != ast.KindJSDocTag {
		return "", ""
	}
	unknownTag := tagNode.AsJSDocUnknownTag()
	if unknownTag == nil || unknownTag.TagName == nil {
		return "", ""
	}
	tagName = unknownTag.TagName.Text()
	if unknownTag.Comment != nil {
		comment = extractNodeListText(unknownTag.Comment)
	}
	return tagName, comment
}

func extractNodeListText(nodeList *ast.NodeList) string {
	if nodeList == nil {
		return ""
	}
	var sb strings.Builder
	for _, commentNode := range nodeList.Nodes {
		switch commentNode.Kind {
		case ast.KindJSDocText, ast.KindJSDocLink, ast.KindJSDocLinkCode, ast.KindJSDocLinkPlain:
			sb.WriteString(commentNode.Text())
		}
	}
	return sb.String()
}
