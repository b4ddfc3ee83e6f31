package classify

import (
	"regexp"
	"strings"

	"go-linkedin-harvester/internal/textutil"
)

var stackKeywords = []string{
	//languages
	"python", "java", "scala", "go", "golang", "javascript", "typescript", "sql", "bash", "shell",
	//data processing
	"spark", "pyspark", "hadoop", "hive", "trino", "presto", "athena", "databricks", "delta lake",
	"iceberg", "hudi", "airflow", "dagster", "dbt", "kafka", "flink", "beam",
	//warehouses
	"snowflake", "bigquery", "redshift", "synapse",
	//databases
	"postgres", "postgresql", "mysql", "mongodb", "cassandra", "dynamodb", "redis",
	//cloud
	"aws", "azure", "gcp", "s3", "emr", "glue", "lambda", "ecs", "eks", "dataproc", "dataflow",
	"pubsub", "eventhub",
	//infra
	"docker", "kubernetes", "terraform", "ansible", "jenkins", "github actions", "ci/cd",
}

var (
	stripRegex = regexp.MustCompile(`[^\p{L}\p{N}+#./\s-]`)
	stackRegex = compileStack(stackKeywords)
)

type stackMatcher struct {
	keyword string
	re      *regexp.Regexp
}

func compileStack(keywords []string) []stackMatcher {
	out := make([]stackMatcher, 0, len(keywords))
	for _, kw := range keywords {
		needle := normalizeDescription(kw)
		if needle == "" {
			continue
		}
		// whitespace boundaries; a trailing sentence period still counts
		re := regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(needle) + `\.?(?:\s|$)`)
		out = append(out, stackMatcher{keyword: kw, re: re})
	}
	return out
}

func normalizeDescription(s string) string {
	s = strings.ToLower(s)
	s = stripRegex.ReplaceAllString(s, " ")
	return textutil.CleanText(s)
}

// TechStack returns the vocabulary keywords present in the description, in vocabulary order.
func TechStack(description string) []string {
	text := normalizeDescription(description)
	if text == "" {
		return nil
	}

	var found []string
	seen := make(map[string]bool)
	for _, m := range stackRegex {
		if seen[m.keyword] {
			continue
		}
		if m.re.MatchString(text) {
			seen[m.keyword] = true
			found = append(found, m.keyword)
		}
	}
	return found
}
