package api

import (
	"net/http"
)

const wishUIHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Wish Engine</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: system-ui, sans-serif;
            background: #1a1a2e;
            color: #eee;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
            align-items: center;
            padding: 32px 16px;
        }
        h1 { font-size: 20px; font-weight: normal; margin-bottom: 20px; }
        form {
            width: 100%;
            max-width: 520px;
            background: #16213e;
            border: 1px solid #0f3460;
            border-radius: 6px;
            padding: 20px;
        }
        #machines {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(110px, 1fr));
            gap: 8px;
            margin-bottom: 16px;
        }
        .machine-card {
            background: #0f3460;
            color: #eee;
            border: 1px solid #0f3460;
            border-radius: 4px;
            padding: 12px 8px;
            cursor: pointer;
            font-size: 14px;
        }
        .machine-card.active { border-color: #60a5fa; background: #1e3a8a; }
        textarea {
            width: 100%;
            min-height: 90px;
            background: #1a1a2e;
            color: #eee;
            border: 1px solid #0f3460;
            border-radius: 4px;
            padding: 8px;
            font: inherit;
            margin-bottom: 12px;
        }
        button[type=submit] {
            background: #2563eb;
            color: #fff;
            border: none;
            border-radius: 4px;
            padding: 8px 18px;
            cursor: pointer;
            font-size: 14px;
        }
        #status-text { margin-top: 12px; font-size: 13px; color: #9ca3af; min-height: 18px; }
        #status-text.error { color: #fca5a5; }
        #result-card {
            width: 100%;
            max-width: 520px;
            margin-top: 16px;
            background: #16213e;
            border-left: 3px solid #059669;
            border-radius: 4px;
            padding: 14px 20px;
        }
        #result-card.hidden { display: none; }
        #result-card dt { color: #6b7280; font-size: 12px; margin-top: 6px; }
        #result-card dd { font-size: 18px; color: #95d5b2; }
    </style>
</head>
<body>
    <h1>Wish Engine</h1>
    <form id="wish-form">
        <div id="machines"></div>
        <textarea id="wish-input"></textarea>
        <button type="submit" id="submit">&#10148;</button>
        <div id="status-text"></div>
    </form>
    <dl id="result-card" class="hidden">
        <dt>scene</dt><dd id="scene-value">-</dd>
        <dt>food</dt><dd id="food-value">-</dd>
        <dt>miss</dt><dd id="miss-value">-</dd>
    </dl>

    <script>
        const params = new URLSearchParams(window.location.search);
        const langQuery = params.get('lang') ? '?lang=' + encodeURIComponent(params.get('lang')) : '';

        const form = document.getElementById('wish-form');
        const machinesEl = document.getElementById('machines');
        const statusText = document.getElementById('status-text');
        const resultCard = document.getElementById('result-card');
        const sceneValue = document.getElementById('scene-value');
        const foodValue = document.getElementById('food-value');
        const missValue = document.getElementById('miss-value');

        let strings = {};
        let selectedMachine = null;

        function t(key, arg) {
            const s = strings[key] || key;
            return arg === undefined ? s : s.replace('%s', arg);
        }

        function showStatus(message, isError) {
            statusText.textContent = message;
            statusText.classList.toggle('error', Boolean(isError));
        }

        function renderMachines(machines) {
            machinesEl.innerHTML = '';
            machines.forEach((machine) => {
                const card = document.createElement('button');
                card.type = 'button';
                card.className = 'machine-card';
                card.textContent = machine;
                card.addEventListener('click', () => {
                    selectedMachine = machine;
                    machinesEl.querySelectorAll('.machine-card').forEach((el) => el.classList.remove('active'));
                    card.classList.add('active');
                    showStatus(t('status.selected', machine));
                });
                machinesEl.appendChild(card);
            });
        }

        function renderResult(data) {
            sceneValue.textContent = (data.scene && (data.scene.label || data.scene.id)) || '-';
            foodValue.textContent = data.food || '-';
            missValue.textContent = data.miss || '-';
            resultCard.classList.remove('hidden');
        }

        form.addEventListener('submit', async (event) => {
            event.preventDefault();
            const message = document.getElementById('wish-input').value.trim();

            if (!selectedMachine) {
                showStatus(t('status.select_machine'), true);
                return;
            }
            if (!message) {
                showStatus(t('status.write_message'), true);
                return;
            }

            showStatus(t('status.rolling'));
            try {
                const resp = await fetch('/api/random' + langQuery, {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({ machine: selectedMachine, message: message })
                });
                const data = await resp.json().catch(() => ({}));
                if (!resp.ok) {
                    showStatus(data.message || t('error.internal'), true);
                    return;
                }
                renderResult(data);
                showStatus(t('status.done'));
            } catch (err) {
                showStatus(t('error.network'), true);
            }
        });

        fetch('/api/catalog' + langQuery)
            .then((resp) => resp.json())
            .then((data) => {
                strings = data.strings || {};
                document.documentElement.lang = data.lang || 'en';
                document.getElementById('wish-input').placeholder = t('status.write_message');
                renderMachines(data.machines || []);
            })
            .catch(() => showStatus('catalog unavailable', true));
    </script>
</body>
</html>
`

func uiHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(wishUIHTML))
}
