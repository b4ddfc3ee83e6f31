package linkedin

// Browser-side helpers. Each is a function expression taking one argument.

// scrollScript scrolls the first list container that exists, or the page.
const scrollScript = `(args) => {
	let container = null;
	for (const sel of args.selectors) {
		const el = document.querySelector(sel);
		if (el) { container = el; break; }
	}
	if (!container) {
		container = document.scrollingElement || document.body;
	}
	if (args.toBottom) {
		container.scrollTo(0, container.scrollHeight);
	} else {
		container.scrollBy(0, args.step);
	}
	return true;
}`

// countScript returns the card count of the first selector with any match.
const countScript = `(selectors) => {
	for (const sel of selectors) {
		try {
			const n = document.querySelectorAll(sel).length;
			if (n > 0) return n;
		} catch (e) {}
	}
	return 0;
}`

// showMoreScript clicks the first visible "show more" button.
const showMoreScript = `(selectors) => {
	for (const sel of selectors) {
		const btn = document.querySelector(sel);
		if (!btn) continue;
		const rect = btn.getBoundingClientRect();
		const style = window.getComputedStyle(btn);
		if (rect.width === 0 || rect.height === 0 || style.visibility === 'hidden' || style.display === 'none') continue;
		btn.click();
		return true;
	}
	return false;
}`

func scrollArgs(toBottom bool, step int) map[string]any {
	return map[string]any{
		"selectors": listContainerSelectors,
		"toBottom":  toBottom,
		"step":      step,
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
